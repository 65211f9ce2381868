package sync

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunnerConfig maps desired-state document files onto entity kinds for one
// sync run.
//
//	workers: 8
//	documents:
//	  videos: ./state/videos.json
//	  projects: ./state/projects.json
type RunnerConfig struct {
	Workers   int               `yaml:"workers,omitempty"`
	Documents map[string]string `yaml:"documents"`
}

func LoadRunnerConfig(path string) (*RunnerConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read runner config: %w", err)
	}
	var cfg RunnerConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse runner config %s: %w", path, err)
	}
	for kind := range cfg.Documents {
		if !validKind(kind) {
			return nil, fmt.Errorf("runner config %s: unknown entity kind %q", path, kind)
		}
	}
	return &cfg, nil
}

func validKind(kind string) bool {
	for _, k := range KindOrder {
		if k == kind {
			return true
		}
	}
	return false
}

// LoadDocuments reads every configured document file into one set.
func (c *RunnerConfig) LoadDocuments() (*DocumentSet, error) {
	ds := &DocumentSet{}
	for kind, path := range c.Documents {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s documents: %w", kind, err)
		}
		if err := ds.DecodeInto(kind, raw); err != nil {
			return nil, fmt.Errorf("parse %s documents from %s: %w", kind, path, err)
		}
	}
	return ds, nil
}
