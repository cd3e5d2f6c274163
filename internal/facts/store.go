// Package facts provides a read-only store of curated sysadmin notes.
// Matches are surfaced as hints to the discovery prompt; they are never
// treated as evidence.
package facts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fact is one curated note with its search keywords
type Fact struct {
	Topic    string   `yaml:"topic"`
	Keywords []string `yaml:"keywords"`
	Text     string   `yaml:"text"`
}

type factsFile struct {
	Facts []Fact `yaml:"facts"`
}

// Store holds the loaded facts in file order
type Store struct {
	facts []Fact
}

// Load reads a facts YAML file. A missing file yields an empty store:
// facts are optional, their absence is not an error.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{}, nil
		}
		return nil, fmt.Errorf("read facts file: %w", err)
	}

	var file factsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse facts file %s: %w", path, err)
	}

	return &Store{facts: file.Facts}, nil
}

// Len returns the number of loaded facts
func (s *Store) Len() int { return len(s.facts) }

// Search returns up to limit facts ranked by keyword hits in the query.
// Facts with zero hits are excluded. Ties keep file order, so results
// are deterministic for a given store and query.
func (s *Store) Search(query string, limit int) []Fact {
	if limit <= 0 || len(s.facts) == 0 {
		return nil
	}

	queryLower := strings.ToLower(query)

	type scored struct {
		fact  Fact
		score int
		order int
	}
	var matches []scored
	for i, fact := range s.facts {
		score := 0
		for _, kw := range fact.Keywords {
			if kw != "" && strings.Contains(queryLower, strings.ToLower(kw)) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{fact: fact, score: score, order: i})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].order < matches[j].order
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	results := make([]Fact, len(matches))
	for i, m := range matches {
		results[i] = m.fact
	}
	return results
}

// Hints renders search results as a compact prompt block, empty string
// when nothing matched.
func (s *Store) Hints(query string, limit int) string {
	matches := s.Search(query, limit)
	if len(matches) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Possibly relevant notes:\n")
	for _, fact := range matches {
		fmt.Fprintf(&b, "- %s: %s\n", fact.Topic, fact.Text)
	}
	return b.String()
}
