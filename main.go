package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avakulenko/grindlog/internal/bus"
	"github.com/avakulenko/grindlog/internal/clock"
	"github.com/avakulenko/grindlog/internal/config"
	"github.com/avakulenko/grindlog/internal/session"
	"github.com/avakulenko/grindlog/internal/store"
	"github.com/avakulenko/grindlog/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	b := bus.New()

	relay, err := bus.NewRelay(b, cfg.EventDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error starting change relay: %v\n", err)
		os.Exit(1)
	}
	defer relay.Close()

	s, err := store.New(cfg.DBPath(), b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	var src clock.Source
	if cfg.NTPServer != "" {
		src = clock.NewNTPSource(cfg.NTPServer)
	}
	tracker := session.New(s, clock.New(src))
	defer tracker.Close()

	app := tui.NewApp(s, tracker)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// Changes made by other instances land in the running program.
	unsub := b.Subscribe(func(c bus.Change) {
		if c.Remote {
			p.Send(tui.BusChange(c))
		}
	})
	defer unsub()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
