// Package catalog holds the static syllabus (subjects, subcategories,
// chapters) and the question bank the session engine draws from.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/examprep/internal/exam"
)

// Subject is a top-level syllabus area.
type Subject struct {
	Name          string
	Subcategories []Subcategory
}

// Subcategory groups related chapters within a subject.
type Subcategory struct {
	Name     string
	Chapters []string
}

// Catalog indexes a syllabus for scope resolution.
type Catalog struct {
	subjects  []Subject
	bySubject map[string]*Subject // lower-cased name
	chapterOf map[string]map[string]string
}

// New builds a Catalog after validating the syllabus.
func New(subjects []Subject) (*Catalog, error) {
	if err := validateSubjects(subjects); err != nil {
		return nil, err
	}
	c := &Catalog{
		subjects:  subjects,
		bySubject: make(map[string]*Subject, len(subjects)),
		chapterOf: make(map[string]map[string]string, len(subjects)),
	}
	for i := range c.subjects {
		s := &c.subjects[i]
		key := strings.ToLower(s.Name)
		c.bySubject[key] = s
		idx := make(map[string]string)
		for _, sc := range s.Subcategories {
			for _, ch := range sc.Chapters {
				idx[ch] = sc.Name
			}
		}
		c.chapterOf[key] = idx
	}
	return c, nil
}

// Default returns the built-in JEE Main catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Subjects returns subject names in display order.
func (c *Catalog) Subjects() []string {
	out := make([]string, len(c.subjects))
	for i, s := range c.subjects {
		out[i] = s.Name
	}
	return out
}

// Subject looks a subject up case-insensitively.
func (c *Catalog) Subject(name string) (Subject, bool) {
	s, ok := c.bySubject[strings.ToLower(name)]
	if !ok {
		return Subject{}, false
	}
	return *s, true
}

// Subcategories returns the subcategory names of subject.
func (c *Catalog) Subcategories(subject string) []string {
	s, ok := c.bySubject[strings.ToLower(subject)]
	if !ok {
		return nil
	}
	out := make([]string, len(s.Subcategories))
	for i, sc := range s.Subcategories {
		out[i] = sc.Name
	}
	return out
}

// SubcategoryOf returns the subcategory a chapter belongs to.
func (c *Catalog) SubcategoryOf(subject, chapter string) (string, bool) {
	sc, ok := c.chapterOf[strings.ToLower(subject)][chapter]
	return sc, ok
}

// ChaptersFor lists the chapters offered for a scope. Subcategory-wise
// scope narrows to the chosen subcategories once any are chosen;
// otherwise every chapter of the subject is offered.
func (c *Catalog) ChaptersFor(subject string, scope exam.Scope, subcategories []string) []string {
	s, ok := c.bySubject[strings.ToLower(subject)]
	if !ok {
		return nil
	}
	var out []string
	for _, sc := range s.Subcategories {
		if scope == exam.ScopeSubcategorywise && len(subcategories) > 0 && !slices.Contains(subcategories, sc.Name) {
			continue
		}
		out = append(out, sc.Chapters...)
	}
	return out
}

// Resolve fills in the chapter selection implied by cfg's scope:
// complete selects every subcategory and chapter, subcategory-wise
// expands the chosen subcategories, and chapter-wise keeps the chosen
// chapters after checking they exist.
func (c *Catalog) Resolve(cfg exam.TestConfiguration) (exam.TestConfiguration, error) {
	s, ok := c.bySubject[strings.ToLower(cfg.Subject)]
	if !ok {
		return cfg, fmt.Errorf("unknown subject %q", cfg.Subject)
	}
	cfg = cfg.Normalized()
	cfg.Subject = s.Name

	switch cfg.Scope {
	case exam.ScopeComplete:
		cfg.Subcategories = c.Subcategories(s.Name)
		cfg.Chapters = c.ChaptersFor(s.Name, exam.ScopeComplete, nil)
	case exam.ScopeSubcategorywise:
		for _, name := range cfg.Subcategories {
			if !slices.Contains(c.Subcategories(s.Name), name) {
				return cfg, fmt.Errorf("subject %q has no subcategory %q", s.Name, name)
			}
		}
		if len(cfg.Subcategories) == 0 {
			return cfg, fmt.Errorf("subcategory-wise test needs at least one subcategory")
		}
		cfg.Chapters = c.ChaptersFor(s.Name, exam.ScopeSubcategorywise, cfg.Subcategories)
	case exam.ScopeChapterwise:
		if len(cfg.Chapters) == 0 {
			return cfg, fmt.Errorf("chapter-wise test needs at least one chapter")
		}
		for _, ch := range cfg.Chapters {
			if _, ok := c.SubcategoryOf(s.Name, ch); !ok {
				return cfg, fmt.Errorf("subject %q has no chapter %q", s.Name, ch)
			}
		}
	default:
		return cfg, fmt.Errorf("unknown scope %q", cfg.Scope)
	}
	return cfg, nil
}
