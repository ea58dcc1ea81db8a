package scenes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leefowlercu/novel-narrator/internal/fsutil"
)

// Load reads scenes from a JSON file written by Save. A file holding an object
// with a "scenes" array is accepted too.
func Load(path string) ([]Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenes file; %w", err)
	}

	list, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenes file %s; %w", path, err)
	}
	return list, nil
}

// Save writes scenes as an indented JSON array.
func Save(path string, list []Scene) error {
	if list == nil {
		list = []Scene{}
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenes; %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create scenes directory; %w", err)
	}

	if err := fsutil.WriteFileAtomic(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write scenes file; %w", err)
	}
	return nil
}
