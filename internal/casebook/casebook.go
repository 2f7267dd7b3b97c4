// Package casebook holds the incident cases shipped with the binary.
package casebook

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/incidentlab/internal/evaluation"
	"github.com/abhisek/incidentlab/internal/scoring"
)

//go:embed cases/*.yaml
var embedded embed.FS

// ErrUnknownCase is returned for a case id not in the catalog.
var ErrUnknownCase = errors.New("unknown case")

// MinClues is the number of clues every case reveals up front.
const MinClues = 2

// Clue is one piece of evidence.
type Clue struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Hint is an optional nudge. Viewing one costs points.
type Hint struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// Case is one incident scenario.
type Case struct {
	ID         string             `yaml:"id"`
	Title      string             `yaml:"title"`
	Difficulty scoring.Difficulty `yaml:"difficulty"`
	Summary    string             `yaml:"summary"`
	Clues      []Clue             `yaml:"clues"`
	Hints      []Hint             `yaml:"hints"`
	Rubric     evaluation.Rubric  `yaml:"rubric"`
}

// Hint returns the hint with id, or nil.
func (c *Case) Hint(id string) *Hint {
	for i := range c.Hints {
		if c.Hints[i].ID == id {
			return &c.Hints[i]
		}
	}
	return nil
}

func (c *Case) validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("missing id")
	}
	if len(c.Clues) < MinClues {
		return fmt.Errorf("needs at least %d clues, has %d", MinClues, len(c.Clues))
	}
	if strings.TrimSpace(c.Rubric.DiagnosisPhrase) == "" {
		return errors.New("rubric has no diagnosis phrase")
	}
	if len(c.Rubric.Keywords) == 0 {
		return errors.New("rubric has no keywords")
	}
	seen := make(map[string]bool, len(c.Hints))
	for _, h := range c.Hints {
		if h.ID == "" {
			return errors.New("hint with empty id")
		}
		if seen[h.ID] {
			return fmt.Errorf("duplicate hint id %q", h.ID)
		}
		seen[h.ID] = true
	}
	return nil
}

// Catalog is a read-only set of cases.
type Catalog struct {
	cases map[string]*Case
	order []string
}

// Default loads the embedded cases. The embedded set is validated by tests,
// so a failure here is a build defect.
func Default() *Catalog {
	c, err := Load(embedded, "cases")
	if err != nil {
		panic(fmt.Sprintf("load embedded cases: %v", err))
	}
	return c
}

// Load reads every *.yaml file in dir of fsys.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read case dir: %w", err)
	}

	cat := &Catalog{cases: make(map[string]*Case)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var c Case
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		c.Difficulty = scoring.ParseDifficulty(string(c.Difficulty))
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("case %s: %w", e.Name(), err)
		}
		if _, dup := cat.cases[c.ID]; dup {
			return nil, fmt.Errorf("duplicate case id %q", c.ID)
		}
		cat.cases[c.ID] = &c
		cat.order = append(cat.order, c.ID)
	}
	sort.Strings(cat.order)
	return cat, nil
}

// List returns every case ordered by id.
func (c *Catalog) List() []*Case {
	out := make([]*Case, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.cases[id])
	}
	return out
}

// Get returns the case with id.
func (c *Catalog) Get(id string) (*Case, error) {
	cs, ok := c.cases[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCase, id)
	}
	return cs, nil
}

// Rubric returns the answer key for a case.
func (c *Catalog) Rubric(id string) (*evaluation.Rubric, error) {
	cs, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	return &cs.Rubric, nil
}

// ClueCount returns how many clues a case has.
func (c *Catalog) ClueCount(id string) (int, error) {
	cs, err := c.Get(id)
	if err != nil {
		return 0, err
	}
	return len(cs.Clues), nil
}

// Difficulty returns a case's difficulty tier.
func (c *Catalog) Difficulty(id string) (scoring.Difficulty, error) {
	cs, err := c.Get(id)
	if err != nil {
		return "", err
	}
	return cs.Difficulty, nil
}

// HasHint reports whether a case defines hintID.
func (c *Catalog) HasHint(id, hintID string) (bool, error) {
	cs, err := c.Get(id)
	if err != nil {
		return false, err
	}
	return cs.Hint(hintID) != nil, nil
}
