package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	assistant "github.com/tahazafark/virtual-ai-assistant"
)

const personaPattern = "**/*.{yaml,yml}"

type personaFile struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	SystemPrompt string `yaml:"system_prompt"`
}

// LoadPersonas reads persona definitions from every YAML file under dir, in
// lexical path order. An empty or missing dir yields no personas.
func LoadPersonas(dir string) ([]assistant.Persona, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, personaPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("config: glob personas: %w", err)
	}
	slices.Sort(matches)

	personas := make([]assistant.Persona, 0, len(matches))
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("config: read persona: %w", err)
		}
		var pf personaFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("config: parse persona %s: %w", filepath.Join(dir, name), err)
		}
		p := assistant.Persona{
			ID:           assistant.PersonaID(pf.ID),
			Name:         pf.Name,
			Description:  pf.Description,
			SystemPrompt: pf.SystemPrompt,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("config: persona %s: %w", filepath.Join(dir, name), err)
		}
		personas = append(personas, p)
	}
	return personas, nil
}
