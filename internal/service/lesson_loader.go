package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"lusolingo/internal/models"
)

const (
	// BuildingBlocksTopicID is the fixed tier-1 topic gating the rest of the
	// catalog.
	BuildingBlocksTopicID = "building-blocks"

	// BuildingBlocksTier is the tier of the foundation curriculum.
	BuildingBlocksTier = 1

	// unrankedTier is where topics without a tier sort.
	unrankedTier = 99

	buildingBlockCount = 10
)

// BuildingBlockIDs returns the fixed set of tier-1 lesson ids, bb-001 through
// bb-010. All non-tier-1 content gates on completing every one of them.
func BuildingBlockIDs() []string {
	ids := make([]string, buildingBlockCount)
	for i := range ids {
		ids[i] = fmt.Sprintf("bb-%03d", i+1)
	}
	return ids
}

// CatalogSource supplies the raw topic catalog. The loader treats it as
// read-only input and memoizes the resolved view.
type CatalogSource func() ([]models.Topic, error)

// LessonLoader presents the static catalog as a single ordered, queryable
// view. The assembled view is cached until Invalidate is called; there is no
// TTL. Lookups never return errors; a miss is a nil or empty result.
type LessonLoader struct {
	source CatalogSource

	mu      sync.RWMutex
	loaded  bool
	loadErr error
	topics  []models.Topic
	lessons []models.Lesson
	byID    map[string]int // lowercased lesson id -> index into lessons
}

// NewLessonLoader creates a lesson loader over the given catalog source.
func NewLessonLoader(source CatalogSource) *LessonLoader {
	return &LessonLoader{source: source}
}

// Warm resolves the catalog eagerly so startup can surface content errors.
func (l *LessonLoader) Warm() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked()
	return l.loadErr
}

// Invalidate drops the cached view. The next query rebuilds it from the
// source in full; there is no partial invalidation.
func (l *LessonLoader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
	l.loadErr = nil
	l.topics = nil
	l.lessons = nil
	l.byID = nil
}

// loadLocked assembles the ordered view. Callers must hold l.mu.
func (l *LessonLoader) loadLocked() {
	if l.loaded {
		return
	}
	l.loaded = true

	topics, err := l.source()
	if err != nil {
		l.loadErr = err
		return
	}

	// Topics sort ascending by tier; a missing tier ranks last.
	sorted := make([]models.Topic, len(topics))
	copy(sorted, topics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return effectiveTier(sorted[i].Tier) < effectiveTier(sorted[j].Tier)
	})
	l.topics = sorted

	// Building-blocks lessons always come first in the flattened view, then
	// everything else in topic order.
	var rest []models.Lesson
	for _, topic := range sorted {
		for _, lesson := range topic.Lessons {
			if topic.ID == BuildingBlocksTopicID {
				l.lessons = append(l.lessons, lesson)
			} else {
				rest = append(rest, lesson)
			}
		}
	}
	l.lessons = append(l.lessons, rest...)

	l.byID = make(map[string]int, len(l.lessons))
	for i, lesson := range l.lessons {
		l.byID[strings.ToLower(lesson.ID)] = i
	}
}

func effectiveTier(tier int) int {
	if tier <= 0 {
		return unrankedTier
	}
	return tier
}

// snapshot returns the cached view, building it if needed. A source error
// yields an empty view; queries stay total.
func (l *LessonLoader) snapshot() ([]models.Topic, []models.Lesson, map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked()
	return l.topics, l.lessons, l.byID
}

// AllTopics returns every topic, ordered ascending by tier.
func (l *LessonLoader) AllTopics() []models.Topic {
	topics, _, _ := l.snapshot()
	return topics
}

// TopicByID returns the topic with the given id, or nil if absent.
func (l *LessonLoader) TopicByID(id string) *models.Topic {
	topics, _, _ := l.snapshot()
	for i := range topics {
		if strings.EqualFold(topics[i].ID, id) {
			return &topics[i]
		}
	}
	return nil
}

// AllLessons returns every lesson flattened across topics. Building-blocks
// lessons precede all other content; within a topic, authored order is kept.
func (l *LessonLoader) AllLessons() []models.Lesson {
	_, lessons, _ := l.snapshot()
	return lessons
}

// LessonByID resolves a lesson by id (case-insensitive) or, failing that, by
// numeric position in the flattened catalog. Returns nil on a miss.
func (l *LessonLoader) LessonByID(idOrIndex string) *models.Lesson {
	_, lessons, byID := l.snapshot()

	if i, ok := byID[strings.ToLower(strings.TrimSpace(idOrIndex))]; ok {
		return &lessons[i]
	}
	if n, err := strconv.Atoi(strings.TrimSpace(idOrIndex)); err == nil && n >= 0 && n < len(lessons) {
		return &lessons[n]
	}
	return nil
}

// LessonsByTopic returns the lessons of one topic in catalog order. An
// unknown topic yields an empty slice.
func (l *LessonLoader) LessonsByTopic(topicID string) []models.Lesson {
	_, lessons, _ := l.snapshot()
	matched := []models.Lesson{}
	for _, lesson := range lessons {
		if strings.EqualFold(lesson.TopicID, topicID) {
			matched = append(matched, lesson)
		}
	}
	return matched
}

// LessonsByTier returns all lessons of one tier in catalog order.
func (l *LessonLoader) LessonsByTier(tier int) []models.Lesson {
	_, lessons, _ := l.snapshot()
	matched := []models.Lesson{}
	for _, lesson := range lessons {
		if lesson.Tier == tier {
			matched = append(matched, lesson)
		}
	}
	return matched
}

// LessonImageQuery builds the external image-search query for a lesson's
// thumbnail from its English glosses. Deterministic for the same content.
func (l *LessonLoader) LessonImageQuery(lesson *models.Lesson) string {
	if lesson == nil {
		return ""
	}
	terms := make([]string, 0, 3)
	for _, word := range lesson.Words {
		gloss := strings.ToLower(strings.TrimSpace(word.EN))
		if gloss == "" {
			continue
		}
		terms = append(terms, gloss)
		if len(terms) == 3 {
			break
		}
	}
	if len(terms) == 0 {
		terms = append(terms, strings.ToLower(lesson.Title))
	}
	return strings.Join(terms, " ") + " portugal"
}

// AreBuildingBlocksComplete reports whether every one of the ten foundation
// lessons appears in completedIDs.
func (l *LessonLoader) AreBuildingBlocksComplete(completedIDs []string) bool {
	completed := idSet(completedIDs)
	for _, id := range BuildingBlockIDs() {
		if !completed[id] {
			return false
		}
	}
	return true
}

// BuildingBlocksProgress summarizes how far through the foundation curriculum
// the learner is.
func (l *LessonLoader) BuildingBlocksProgress(completedIDs []string) models.BuildingBlocksProgress {
	completed := idSet(completedIDs)
	done := 0
	for _, id := range BuildingBlockIDs() {
		if completed[id] {
			done++
		}
	}
	return models.BuildingBlocksProgress{
		Total:      buildingBlockCount,
		Completed:  done,
		Remaining:  buildingBlockCount - done,
		Percentage: roundPercentage(done, buildingBlockCount),
		IsComplete: done == buildingBlockCount,
	}
}

// CheckLessonAvailability reports whether a lesson is unlocked given the set
// of completed lesson ids. Tier-1 lessons gate only on their own prerequisite
// list; everything else additionally requires the complete building blocks.
func (l *LessonLoader) CheckLessonAvailability(idOrIndex string, completedIDs []string) models.LessonAvailability {
	lesson := l.LessonByID(idOrIndex)
	if lesson == nil {
		return models.LessonAvailability{Available: false, Reason: "Lesson not found"}
	}

	completed := idSet(completedIDs)

	if lesson.Tier != BuildingBlocksTier && !l.AreBuildingBlocksComplete(completedIDs) {
		return models.LessonAvailability{Available: false, Reason: "Finish the building blocks first"}
	}

	var missing []string
	for _, prereq := range lesson.Prerequisites {
		if !completed[strings.ToLower(prereq)] {
			missing = append(missing, prereq)
		}
	}
	if len(missing) > 0 {
		return models.LessonAvailability{
			Available: false,
			Reason:    "Missing prerequisites: " + strings.Join(missing, ", "),
		}
	}

	return models.LessonAvailability{Available: true}
}

// NextRecommendedLesson returns the first available, not-yet-completed lesson
// in catalog order, or nil when nothing remains.
func (l *LessonLoader) NextRecommendedLesson(completedIDs []string) *models.Lesson {
	_, lessons, _ := l.snapshot()
	completed := idSet(completedIDs)
	for i := range lessons {
		if completed[strings.ToLower(lessons[i].ID)] {
			continue
		}
		if l.CheckLessonAvailability(lessons[i].ID, completedIDs).Available {
			return &lessons[i]
		}
	}
	return nil
}

// AvailableLessons returns every unlocked, not-yet-completed lesson in
// catalog order.
func (l *LessonLoader) AvailableLessons(completedIDs []string) []models.Lesson {
	_, lessons, _ := l.snapshot()
	completed := idSet(completedIDs)
	available := []models.Lesson{}
	for _, lesson := range lessons {
		if completed[strings.ToLower(lesson.ID)] {
			continue
		}
		if l.CheckLessonAvailability(lesson.ID, completedIDs).Available {
			available = append(available, lesson)
		}
	}
	return available
}

// ProgressStats rolls up completion counts per tier plus a catalog-wide
// total.
func (l *LessonLoader) ProgressStats(completedIDs []string) models.ProgressStats {
	_, lessons, _ := l.snapshot()
	completed := idSet(completedIDs)

	tiers := make(map[int]models.TierStats)
	total := models.TierStats{}
	for _, lesson := range lessons {
		stats := tiers[lesson.Tier]
		stats.Total++
		total.Total++
		if completed[strings.ToLower(lesson.ID)] {
			stats.Completed++
			total.Completed++
		}
		tiers[lesson.Tier] = stats
	}
	for tier, stats := range tiers {
		stats.Percentage = roundPercentage(stats.Completed, stats.Total)
		tiers[tier] = stats
	}
	total.Percentage = roundPercentage(total.Completed, total.Total)

	return models.ProgressStats{Tiers: tiers, Total: total}
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[strings.ToLower(strings.TrimSpace(id))] = true
	}
	return set
}

func roundPercentage(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
