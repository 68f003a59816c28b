package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/avakulenko/grindlog/internal/store"
)

// ToCSV writes one row per session, flat and spreadsheet-friendly.
// Unlike the xlsx export it carries no raw payload and cannot be
// re-imported.
func ToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Start", "End", "Duration (s)", "Duration", "Play", "Select", "Profit", "Hands", "Notes"}); err != nil {
		return err
	}

	for _, s := range sessions {
		row := []string{
			s.ID,
			s.OverallStartTime.Local().Format(time.RFC3339),
			s.OverallEndTime.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", s.OverallDuration),
			formatDuration(s.OverallDuration),
			formatDuration(s.PlayDuration()),
			formatDuration(s.SelectDuration()),
			fmt.Sprintf("%g", s.OverallProfit),
			fmt.Sprintf("%d", s.HandsPlayed),
			s.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
