// Package levels loads the fixed level catalog.
package levels

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/typechallenge/internal/model"
)

//go:embed levels.yaml
var defaultCatalog []byte

// ErrUnknownLevel is returned when a difficulty/number pair is not in the catalog.
var ErrUnknownLevel = errors.New("unknown level")

var difficultyOrder = map[model.Difficulty]int{
	model.Easy:       0,
	model.Medium:     1,
	model.Hard:       2,
	model.Impossible: 3,
}

type catalogFile struct {
	Levels []levelEntry `yaml:"levels"`
}

type levelEntry struct {
	Difficulty  model.Difficulty      `yaml:"difficulty"`
	Number      int                   `yaml:"number"`
	Name        string                `yaml:"name"`
	Description string                `yaml:"description"`
	Text        string                `yaml:"text"`
	Thresholds  model.LevelThresholds `yaml:"thresholds"`
}

// Catalog is an ordered, validated set of levels.
type Catalog struct {
	levels []model.Level
	index  map[model.Difficulty]map[int]int
}

// Load returns the built-in catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode level catalog: %w", err)
	}
	levels := make([]model.Level, 0, len(file.Levels))
	for _, e := range file.Levels {
		levels = append(levels, model.Level{
			Difficulty:  e.Difficulty,
			Number:      e.Number,
			Name:        e.Name,
			Description: e.Description,
			Text:        e.Text,
			Thresholds:  e.Thresholds,
		})
	}
	return New(levels)
}

// New builds a catalog from levels, sorted by difficulty then number.
func New(levels []model.Level) (*Catalog, error) {
	c := &Catalog{
		levels: append([]model.Level(nil), levels...),
		index:  map[model.Difficulty]map[int]int{},
	}
	sort.SliceStable(c.levels, func(i, j int) bool {
		di, dj := difficultyOrder[c.levels[i].Difficulty], difficultyOrder[c.levels[j].Difficulty]
		if di == dj {
			return c.levels[i].Number < c.levels[j].Number
		}
		return di < dj
	})
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every level and rebuilds the lookup index.
func (c *Catalog) Validate() error {
	c.index = map[model.Difficulty]map[int]int{}
	if len(c.levels) == 0 {
		return fmt.Errorf("level catalog is empty")
	}
	for i, l := range c.levels {
		if _, ok := difficultyOrder[l.Difficulty]; !ok {
			return fmt.Errorf("level %d: unknown difficulty %q", i, l.Difficulty)
		}
		if l.Number <= 0 {
			return fmt.Errorf("%s: level number must be > 0", l.Difficulty)
		}
		if l.Text == "" {
			return fmt.Errorf("%s %d: text must not be empty", l.Difficulty, l.Number)
		}
		t := l.Thresholds
		if t.TimeLimitSeconds <= 0 {
			return fmt.Errorf("%s %d: time limit must be > 0", l.Difficulty, l.Number)
		}
		if t.MinAccuracy < 0 || t.MinAccuracy > 100 {
			return fmt.Errorf("%s %d: min accuracy must be between 0 and 100", l.Difficulty, l.Number)
		}
		if t.MinWPM < 0 || t.MaxMistakes < 0 {
			return fmt.Errorf("%s %d: thresholds must not be negative", l.Difficulty, l.Number)
		}
		if _, ok := c.index[l.Difficulty]; !ok {
			c.index[l.Difficulty] = map[int]int{}
		}
		if _, dup := c.index[l.Difficulty][l.Number]; dup {
			return fmt.Errorf("%s %d: duplicate level", l.Difficulty, l.Number)
		}
		c.index[l.Difficulty][l.Number] = i
	}
	return nil
}

// Get looks up a level.
func (c *Catalog) Get(difficulty model.Difficulty, number int) (model.Level, error) {
	if idx, ok := c.index[difficulty][number]; ok {
		return c.levels[idx], nil
	}
	return model.Level{}, fmt.Errorf("%w: %s %d", ErrUnknownLevel, difficulty, number)
}

// All returns every level in play order.
func (c *Catalog) All() []model.Level {
	return append([]model.Level(nil), c.levels...)
}

// Difficulties returns the difficulties present, in play order.
func (c *Catalog) Difficulties() []model.Difficulty {
	var out []model.Difficulty
	for _, l := range c.levels {
		if len(out) == 0 || out[len(out)-1] != l.Difficulty {
			out = append(out, l.Difficulty)
		}
	}
	return out
}

// ByDifficulty returns the levels of one difficulty.
func (c *Catalog) ByDifficulty(difficulty model.Difficulty) []model.Level {
	var out []model.Level
	for _, l := range c.levels {
		if l.Difficulty == difficulty {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of levels.
func (c *Catalog) Len() int {
	return len(c.levels)
}

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(s string) (model.Difficulty, error) {
	d := model.Difficulty(s)
	if _, ok := difficultyOrder[d]; !ok {
		return "", fmt.Errorf("%w: difficulty %q", ErrUnknownLevel, s)
	}
	return d, nil
}
