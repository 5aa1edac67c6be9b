// Package questions loads the read-only question-set pool the clients draw
// from. The coordinator never inspects question content; it only hands a
// random set to whoever asks.
package questions

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Question is one letter's entry: localized prompt plus the accepted answers
// per language.
type Question struct {
	Question map[string]string   `yaml:"question" json:"question"`
	Answer   map[string][]string `yaml:"answer" json:"answer"`
}

// Set maps an uppercase letter to its question.
type Set map[string]Question

type poolFile struct {
	Sets []Set `yaml:"sets"`
}

type Pool struct {
	sets []Set
}

func Load(path string) (*Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file: %w", err)
	}

	var pf poolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse question file: %w", err)
	}
	if len(pf.Sets) == 0 {
		return nil, fmt.Errorf("question file %s holds no sets", path)
	}
	return &Pool{sets: pf.Sets}, nil
}

// Pick returns one random set from the pool.
func (p *Pool) Pick() Set {
	return p.sets[rand.Intn(len(p.sets))]
}

func (p *Pool) Len() int { return len(p.sets) }
