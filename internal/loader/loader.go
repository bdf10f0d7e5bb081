// Package loader reads RunInput scenario fixtures from YAML or JSON files.
// It is the ambient "get data in" layer the CLI needs; the evaluation core
// itself never takes a path, only a guardmodel.RunInput value — the same
// separation the teacher draws between loading agent definitions from disk
// (internal/loader) and analyzing them in memory (internal/analysis).
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

// rawExtraction mirrors guardmodel.Extraction with string-keyed fixture
// fields.
type rawExtraction struct {
	Kind        string `yaml:"kind" json:"kind"`
	Pattern     string `yaml:"pattern" json:"pattern"`
	MustInclude string `yaml:"must_include" json:"must_include"`
}

type rawClaim struct {
	Statement    string        `yaml:"statement" json:"statement"`
	EvidenceURLs []string      `yaml:"evidence_urls" json:"evidence_urls"`
	Extraction   rawExtraction `yaml:"extraction" json:"extraction"`
}

type rawOutput struct {
	Text   string     `yaml:"text" json:"text"`
	Claims []rawClaim `yaml:"claims" json:"claims"`
}

type rawMessage struct {
	Role    string `yaml:"role" json:"role"`
	Content string `yaml:"content" json:"content"`
}

type rawContext struct {
	Source string `yaml:"source" json:"source"`
	Text   string `yaml:"text" json:"text"`
}

type rawToolCall struct {
	Name string         `yaml:"name" json:"name"`
	Args map[string]any `yaml:"args" json:"args"`
}

type rawRunInput struct {
	Goal        string        `yaml:"goal" json:"goal"`
	Constraints []string      `yaml:"constraints" json:"constraints"`
	Messages    []rawMessage  `yaml:"messages" json:"messages"`
	Contexts    []rawContext  `yaml:"contexts" json:"contexts"`
	ToolCalls   []rawToolCall `yaml:"tool_calls" json:"tool_calls"`
	Output      *rawOutput    `yaml:"output" json:"output"`
}

// LoadRunInput reads one scenario fixture from path (.yaml/.yml/.json) and
// converts it into a guardmodel.RunInput.
func LoadRunInput(path string) (guardmodel.RunInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return guardmodel.RunInput{}, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var raw rawRunInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return guardmodel.RunInput{}, fmt.Errorf("parse scenario %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return guardmodel.RunInput{}, fmt.Errorf("parse scenario %s: %w", path, err)
		}
	default:
		return guardmodel.RunInput{}, fmt.Errorf("unsupported scenario format %s", path)
	}

	return convert(raw), nil
}

func convert(raw rawRunInput) guardmodel.RunInput {
	run := guardmodel.RunInput{
		Goal:        raw.Goal,
		Constraints: raw.Constraints,
	}

	for _, m := range raw.Messages {
		run.Messages = append(run.Messages, guardmodel.Message{Role: m.Role, Content: m.Content})
	}
	for _, c := range raw.Contexts {
		run.Contexts = append(run.Contexts, guardmodel.ContextChunk{Source: c.Source, Text: c.Text})
	}
	for _, t := range raw.ToolCalls {
		run.ToolCalls = append(run.ToolCalls, guardmodel.ToolCall{Name: t.Name, Args: t.Args})
	}

	if raw.Output != nil {
		output := &guardmodel.RunOutput{Text: raw.Output.Text}
		for _, c := range raw.Output.Claims {
			output.Claims = append(output.Claims, guardmodel.Claim{
				Statement:    c.Statement,
				EvidenceURLs: c.EvidenceURLs,
				Extraction: guardmodel.Extraction{
					Kind:        guardmodel.ExtractionKind(c.Extraction.Kind),
					Pattern:     c.Extraction.Pattern,
					MustInclude: c.Extraction.MustInclude,
				},
			})
		}
		run.Output = output
	}

	return run
}
