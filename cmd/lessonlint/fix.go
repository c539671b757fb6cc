package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// assignMissingIDs scans the raw topic files for lessons without an id and,
// when write is true, fills each with a generated ksuid. This runs on the raw
// JSON because the catalog loader refuses files with missing ids.
func assignMissingIDs(dir string, write bool) (assigned, scanned int, err error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, 0, err
	}

	for _, path := range paths {
		scanned++

		data, err := os.ReadFile(path)
		if err != nil {
			return assigned, scanned, fmt.Errorf("failed to read %s: %w", path, err)
		}

		changed := false
		lessons := gjson.GetBytes(data, "lessons")
		for i, lesson := range lessons.Array() {
			if lesson.Get("id").String() != "" {
				continue
			}
			if !write {
				continue
			}
			id := "gen-" + ksuid.New().String()
			data, err = sjson.SetBytes(data, fmt.Sprintf("lessons.%d.id", i), id)
			if err != nil {
				return assigned, scanned, fmt.Errorf("failed to set id in %s: %w", path, err)
			}
			assigned++
			changed = true
		}

		if changed {
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return assigned, scanned, fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
	}

	return assigned, scanned, nil
}
