// Package config loads a guardpolicy.Policy from a YAML file, using the
// same gopkg.in/yaml.v3-backed Load/auto-discover pattern the teacher uses
// for its own configuration (internal/config.Load), generalized to discover
// "sentryguard.yaml"/"sentryguard.yml" instead of "agent-evals.yaml".
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thinkwright/sentryguard/internal/guardpolicy"
)

// Load loads a Policy from policyPath if given; otherwise it auto-discovers
// sentryguard.yaml/.yml alongside scenarioPath. With neither present, it
// returns the default Policy (guardpolicy.New).
func Load(policyPath, scenarioPath string) (guardpolicy.Policy, error) {
	if policyPath != "" {
		return loadFile(policyPath)
	}

	dir := filepath.Dir(scenarioPath)
	for _, name := range []string{"sentryguard.yaml", "sentryguard.yml"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return loadFile(candidate)
		}
	}

	return guardpolicy.New(), nil
}

func loadFile(path string) (guardpolicy.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return guardpolicy.Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return guardpolicy.Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}
	if raw == nil {
		return guardpolicy.New(), nil
	}
	return guardpolicy.FromMap(raw), nil
}
