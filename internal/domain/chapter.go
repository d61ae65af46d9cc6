package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	scenarioIDPattern = regexp.MustCompile(`^scenario_\d{3}(_\d+)?$`)
	chapterIDPattern  = regexp.MustCompile(`^(scenario_\d{3})_(\d+)$`)
	baseIDPattern     = regexp.MustCompile(`^scenario_\d{3}$`)
)

// ValidScenarioID reports whether id has the form scenario_XXX or scenario_XXX_N.
func ValidScenarioID(id string) bool {
	return scenarioIDPattern.MatchString(id)
}

// ValidBaseScenarioID reports whether id is a scenario id without a chapter suffix.
func ValidBaseScenarioID(id string) bool {
	return baseIDPattern.MatchString(id)
}

// ParseChapter splits a chapter id into its base id and chapter number.
// Ids without a suffix, and suffixes that are zero or overflow, report ok=false.
func ParseChapter(id string) (base string, chapter int, ok bool) {
	m := chapterIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return m[1], n, true
}

// ChapterID formats the id of chapter n of base.
func ChapterID(base string, n int) string {
	return fmt.Sprintf("%s_%d", base, n)
}

// ChapterTable maps a base scenario id to the number of chapters it has.
type ChapterTable map[string]int

// DefaultChapterTable is used when no chapter configuration is supplied.
func DefaultChapterTable() ChapterTable {
	return ChapterTable{"scenario_001": 3}
}

// MaxChapter returns the configured chapter count for base, or 0.
func (t ChapterTable) MaxChapter(base string) int {
	if t == nil {
		return 0
	}
	return t[base]
}

// NextChapterID returns the id following id in its chapter sequence.
func (t ChapterTable) NextChapterID(id string) (string, bool) {
	base, chapter, ok := ParseChapter(id)
	if !ok {
		return "", false
	}
	if chapter >= t.MaxChapter(base) {
		return "", false
	}
	return ChapterID(base, chapter+1), true
}

// HasNextChapter reports whether id is followed by another chapter.
func (t ChapterTable) HasNextChapter(id string) bool {
	_, ok := t.NextChapterID(id)
	return ok
}
