// Package exam defines the reference data and records shared by the
// session engine and the analytics pipeline.
package exam

import (
	"fmt"
	"slices"
	"strings"
)

// Scope selects how the question pool is narrowed for a test.
type Scope string

const (
	ScopeChapterwise     Scope = "chapterwise"
	ScopeSubcategorywise Scope = "subcategorywise"
	ScopeComplete        Scope = "complete"
)

// Difficulty is one of the three canonical difficulty buckets.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists the buckets in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty maps a free-form label onto a bucket. Matching is
// case-insensitive; anything unrecognized lands in Medium.
func ParseDifficulty(label string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

const (
	// DefaultDurationSeconds is used when a configuration carries no
	// usable duration.
	DefaultDurationSeconds = 900

	MinDurationMinutes = 15
	MaxDurationMinutes = 180
)

// TestConfiguration is the immutable input to a session.
type TestConfiguration struct {
	Subject         string   `json:"subject"`
	Scope           Scope    `json:"scope"`
	Subcategories   []string `json:"subcategories,omitempty"`
	Chapters        []string `json:"chapters,omitempty"`
	Difficulty      string   `json:"difficulty"`
	TestType        string   `json:"testType,omitempty"`
	DurationSeconds int      `json:"duration"`
}

// Normalized returns a copy with a usable duration.
func (c TestConfiguration) Normalized() TestConfiguration {
	if c.DurationSeconds <= 0 {
		c.DurationSeconds = DefaultDurationSeconds
	}
	c.Chapters = slices.Clone(c.Chapters)
	c.Subcategories = slices.Clone(c.Subcategories)
	return c
}

// Equal reports whether two configurations describe the same test.
func (c TestConfiguration) Equal(o TestConfiguration) bool {
	return c.Subject == o.Subject &&
		c.Scope == o.Scope &&
		strings.EqualFold(c.Difficulty, o.Difficulty) &&
		c.TestType == o.TestType &&
		c.DurationSeconds == o.DurationSeconds &&
		slices.Equal(c.Chapters, o.Chapters) &&
		slices.Equal(c.Subcategories, o.Subcategories)
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid test configuration: %s", strings.Join(e.Problems, "; "))
}

// Validate applies the test-setup form rules. Sessions do not require a
// valid configuration; callers use this to reject input before starting.
func (c TestConfiguration) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Subject) == "" {
		problems = append(problems, "subject is required")
	}
	switch c.Scope {
	case ScopeChapterwise:
		if len(c.Chapters) == 0 {
			problems = append(problems, "select at least one chapter")
		}
	case ScopeSubcategorywise:
		if len(c.Subcategories) == 0 {
			problems = append(problems, "select at least one subcategory")
		}
	case ScopeComplete:
	default:
		problems = append(problems, fmt.Sprintf("unknown scope %q", c.Scope))
	}
	if c.DurationSeconds < MinDurationMinutes*60 || c.DurationSeconds > MaxDurationMinutes*60 {
		problems = append(problems, fmt.Sprintf("duration must be between %d and %d minutes", MinDurationMinutes, MaxDurationMinutes))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
