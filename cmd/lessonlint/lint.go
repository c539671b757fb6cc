package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
	"golang.org/x/exp/maps"

	"lusolingo/internal/catalog"
	"lusolingo/internal/models"
)

// LintResult is the outcome of one lint run over a catalog directory.
type LintResult struct {
	FilesScanned int      `json:"filesScanned"`
	TopicCount   int      `json:"topicCount"`
	LessonCount  int      `json:"lessonCount"`
	WordCount    int      `json:"wordCount"`
	IDsAssigned  int      `json:"idsAssigned"`
	Problems     []string `json:"problems"`
}

func runLint(cfg RunnerConfig) (LintResult, error) {
	result := LintResult{}

	assigned, scanned, err := assignMissingIDs(cfg.Dir, cfg.AssignIDs)
	if err != nil {
		return result, err
	}
	result.IDsAssigned = assigned
	result.FilesScanned = scanned

	topics, err := catalog.LoadFS(os.DirFS(cfg.Dir), ".")
	if err != nil {
		return result, fmt.Errorf("catalog failed to load: %w", err)
	}

	result.TopicCount = len(topics)
	result.Problems = lintTopics(topics, &result)

	if cfg.YAMLReport != "" {
		if err := writeYAMLReport(cfg.YAMLReport, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

func lintTopics(topics []models.Topic, result *LintResult) []string {
	var problems []string

	lessonIDs := map[string]int{}
	wordOwners := map[string][]string{}

	for _, topic := range topics {
		if topic.Tier < 1 {
			problems = append(problems, fmt.Sprintf("topic %s: tier must be >= 1, got %d", topic.ID, topic.Tier))
		}
		if topic.Title == "" {
			problems = append(problems, fmt.Sprintf("topic %s: missing title", topic.ID))
		}

		for _, lesson := range topic.Lessons {
			result.LessonCount++
			lessonIDs[lesson.ID]++

			if lesson.Title == "" {
				problems = append(problems, fmt.Sprintf("lesson %s: missing title", lesson.ID))
			}
			if len(lesson.Words) == 0 && len(lesson.Challenges) == 0 {
				problems = append(problems, fmt.Sprintf("lesson %s: no words and no authored challenges", lesson.ID))
			}

			for i, word := range lesson.Words {
				result.WordCount++
				if word.PT == "" || word.EN == "" {
					problems = append(problems, fmt.Sprintf("lesson %s: word %d has empty text", lesson.ID, i))
					continue
				}
				wordOwners[word.Key()] = append(wordOwners[word.Key()], lesson.ID)
			}

			problems = append(problems, lintChallenges(lesson)...)
		}
	}

	// Duplicate lesson ids
	for id, count := range lessonIDs {
		if count > 1 {
			problems = append(problems, fmt.Sprintf("lesson id %s appears %d times", id, count))
		}
	}

	// Dangling prerequisites
	for _, topic := range topics {
		for _, lesson := range topic.Lessons {
			for _, prereq := range lesson.Prerequisites {
				if lessonIDs[prereq] == 0 {
					problems = append(problems, fmt.Sprintf("lesson %s: prerequisite %s does not exist", lesson.ID, prereq))
				}
			}
		}
	}

	// Words taught in more than one lesson are legal but worth flagging
	dupKeys := lo.Filter(maps.Keys(wordOwners), func(key string, _ int) bool {
		return len(lo.Uniq(wordOwners[key])) > 1
	})
	sort.Strings(dupKeys)
	for _, key := range dupKeys {
		problems = append(problems, fmt.Sprintf("warning: word %q taught in lessons %v", key, lo.Uniq(wordOwners[key])))
	}

	return problems
}

func lintChallenges(lesson models.Lesson) []string {
	var problems []string

	for i, challenge := range lesson.Challenges {
		if challenge.Kind == "" {
			problems = append(problems, fmt.Sprintf("lesson %s: challenge %d has no kind", lesson.ID, i))
		}
		if challenge.WordIndex != nil {
			idx := *challenge.WordIndex
			if idx < 0 || idx >= len(lesson.Words) {
				problems = append(problems, fmt.Sprintf("lesson %s: challenge %d wordIndex %d out of range", lesson.ID, i, idx))
			}
		}
	}

	return problems
}
