package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"lusolingo/internal/models"
)

//go:embed data/*.json
var catalogData embed.FS

// Load parses every embedded topic file into the topic list. Each JSON file
// holds one topic; lessons inherit the topic's id and tier so lesson files
// stay compact. File order within the catalog is not significant; the
// lesson loader orders topics by tier.
func Load() ([]models.Topic, error) {
	return LoadFS(catalogData, "data")
}

// LoadFS reads topic files from an arbitrary filesystem. Exposed so the
// content lint tool can run against a working directory instead of the
// embedded copy.
func LoadFS(fsys fs.FS, dir string) ([]models.Topic, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}

	var topics []models.Topic
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		var topic models.Topic
		if err := json.Unmarshal(data, &topic); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		if topic.ID == "" {
			return nil, fmt.Errorf("%s: topic id is required", entry.Name())
		}
		for i := range topic.Lessons {
			lesson := &topic.Lessons[i]
			if lesson.ID == "" {
				return nil, fmt.Errorf("%s: lesson %d missing id", entry.Name(), i)
			}
			lesson.TopicID = topic.ID
			lesson.Tier = topic.Tier
		}
		topics = append(topics, topic)
	}

	return topics, nil
}
