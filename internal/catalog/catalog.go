// Package catalog reads the game seed file the server loads at startup.
//
//	games:
//	  - name: Chess
//	    skill_levels: [Beginner, Intermediate, Master]
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ionutdr23/GameMate/internal/domain"
)

type file struct {
	Games []entry `yaml:"games"`
}

type entry struct {
	Name        string   `yaml:"name"`
	SkillLevels []string `yaml:"skill_levels"`
}

// Load parses the seed file at path. Entries must have a name and at least
// one skill level; names must be unique ignoring case.
func Load(path string) ([]domain.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]domain.Game, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	games := make([]domain.Game, 0, len(f.Games))
	seen := make(map[string]bool, len(f.Games))
	for i, e := range f.Games {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("catalog entry %d: name required", i)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("catalog entry %d: duplicate game %q", i, name)
		}
		seen[key] = true

		levels := make([]string, 0, len(e.SkillLevels))
		for _, l := range e.SkillLevels {
			if l = strings.TrimSpace(l); l != "" {
				levels = append(levels, l)
			}
		}
		if len(levels) == 0 {
			return nil, fmt.Errorf("catalog entry %d (%s): at least one skill level required", i, name)
		}
		games = append(games, domain.Game{Name: name, SkillLevels: levels})
	}
	return games, nil
}
