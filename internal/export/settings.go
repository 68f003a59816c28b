package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/avakulenko/grindlog/internal/store"
)

type settingsExport struct {
	ExportedAt string         `json:"exported_at"`
	Settings   store.Settings `json:"settings"`
}

// SettingsToJSON snapshots the current settings, plans and off days
// to an indented JSON file.
func SettingsToJSON(settings store.Settings, path string) error {
	snap := settingsExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:   settings,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// SettingsFromJSON reads a settings snapshot produced by
// SettingsToJSON. Unknown fields are ignored; fields absent from the
// file keep their defaults.
func SettingsFromJSON(path string) (store.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	snap := settingsExport{Settings: store.DefaultSettings()}
	if err := json.Unmarshal(data, &snap); err != nil {
		return store.Settings{}, fmt.Errorf("parse settings file: %w", err)
	}
	return snap.Settings, nil
}
