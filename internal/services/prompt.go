package services

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// PromptSpec tunes the language-model fallback. All fields are optional.
type PromptSpec struct {
	System string `yaml:"system"`
	Style  struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

// LoadPromptSpec reads a YAML prompt file. A missing file yields a zero spec,
// which sends the user text alone.
func LoadPromptSpec(path string) (PromptSpec, error) {
	var spec PromptSpec
	if path == "" {
		return spec, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return spec, nil
		}
		return spec, err
	}
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return spec, err
	}
	return spec, nil
}
