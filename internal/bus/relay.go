package bus

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// envelope is the on-disk form of a relayed change.
type envelope struct {
	Origin string          `json:"origin"`
	Value  json.RawMessage `json:"value"` // null means cleared
}

// Relay bridges a Bus across processes sharing one data directory.
// Every local change is written to <dir>/<key>.json; foreign writes
// observed via fsnotify are replayed onto the local bus with Remote
// set. Last write wins, per key.
type Relay struct {
	bus     *Bus
	dir     string
	origin  string
	watcher *fsnotify.Watcher
	unsub   func()
	done    chan struct{}
}

// NewRelay starts relaying changes for b through dir.
func NewRelay(b *Bus, dir string) (*Relay, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create relay dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	r := &Relay{
		bus:     b,
		dir:     dir,
		origin:  uuid.NewString(),
		watcher: w,
		done:    make(chan struct{}),
	}
	r.unsub = b.Subscribe(r.onLocalChange)
	go r.watch()
	return r, nil
}

// Close stops the relay. Pending foreign events may be dropped.
func (r *Relay) Close() error {
	r.unsub()
	err := r.watcher.Close()
	<-r.done
	return err
}

func (r *Relay) onLocalChange(c Change) {
	if c.Remote {
		return
	}
	env := envelope{Origin: r.origin, Value: c.Value}
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("relay: marshal %s: %v", c.Key, err)
		return
	}

	path := filepath.Join(r.dir, c.Key+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Printf("relay: write %s: %v", c.Key, err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		log.Printf("relay: publish %s: %v", c.Key, err)
	}
}

func (r *Relay) watch() {
	defer close(r.done)
	for {
		select {
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			r.replay(ev.Name)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("relay: watch error: %v", err)
		}
	}
}

func (r *Relay) replay(path string) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return
	}
	key := strings.TrimSuffix(name, ".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("relay: corrupt event file %s: %v", name, err)
		return
	}
	if env.Origin == r.origin {
		return
	}
	// json leaves a literal null in the raw message; normalize to the
	// nil "cleared" sentinel the bus contract promises.
	value := env.Value
	if string(value) == "null" {
		value = nil
	}
	r.bus.Publish(Change{Key: key, Value: value, Remote: true})
}
