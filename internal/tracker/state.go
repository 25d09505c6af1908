package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"FundCalc/internal/model"
)

// LoadState reads the watchlist from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*model.WatchState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.WatchState{}, nil
		}
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	var state model.WatchState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}
	return &state, nil
}

// SaveState writes the watchlist to a JSON file through a temp file and rename.
func SaveState(filePath string, state *model.WatchState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
