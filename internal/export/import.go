package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/avakulenko/grindlog/internal/store"
)

// ErrNoSessions marks a workbook that was readable but held no
// importable session rows. Callers report this separately from a
// corrupt or foreign file.
var ErrNoSessions = errors.New("no sessions found in file")

// ImportResult summarizes one import run.
type ImportResult struct {
	Found       int // sessions parsed from the file
	Added       int // sessions new to the store
	Duplicates  int // sessions already present, skipped
	SkippedRows int // off-day or unparseable rows
}

// FromXLSX extracts sessions from a previously exported workbook. It
// locates the hidden raw-payload column by header and tolerates rows
// without a payload; only a file with no raw column at all, or no
// session rows, is an error.
func FromXLSX(data []byte) ([]store.Session, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, 0, ErrNoSessions
	}

	rawCol := -1
	for i, header := range rows[0] {
		if header == rawHeader {
			rawCol = i
			break
		}
	}
	if rawCol < 0 {
		return nil, 0, fmt.Errorf("no %q column in %q; not an exported file", rawHeader, sheets[0])
	}

	var sessions []store.Session
	skipped := 0
	for i, row := range rows[1:] {
		if rawCol >= len(row) {
			continue // trailing blank cells are dropped by GetRows
		}
		cell := row[rawCol]
		if cell == "" {
			continue
		}
		if cell == offDayMarker {
			skipped++
			continue
		}
		var daySessions []store.Session
		if err := json.Unmarshal([]byte(cell), &daySessions); err != nil {
			log.Printf("import: skipping row %d: bad payload: %v", i+2, err)
			skipped++
			continue
		}
		sessions = append(sessions, daySessions...)
	}

	if len(sessions) == 0 {
		return nil, skipped, ErrNoSessions
	}
	return sessions, skipped, nil
}

// Import parses a workbook and merges its sessions into the store,
// deduplicating by session id so importing the same file twice is a
// no-op.
func Import(s *store.Store, data []byte) (ImportResult, error) {
	sessions, skipped, err := FromXLSX(data)
	if err != nil {
		return ImportResult{SkippedRows: skipped}, err
	}
	added, err := s.ImportSessions(sessions)
	if err != nil {
		return ImportResult{Found: len(sessions), SkippedRows: skipped}, err
	}
	return ImportResult{
		Found:       len(sessions),
		Added:       added,
		Duplicates:  len(sessions) - added,
		SkippedRows: skipped,
	}, nil
}
