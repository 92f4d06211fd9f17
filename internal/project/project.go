// Package project loads project plans: the ordered task list and file tree a
// session is created from.
package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/aristath/agentboard/internal/scheduler"
	"github.com/aristath/agentboard/internal/workspace"
)

// Project is one plan document.
type Project struct {
	ID     string               `json:"id" yaml:"id" toml:"id"`
	Name   string               `json:"name" yaml:"name" toml:"name"`
	Prompt string               `json:"prompt,omitempty" yaml:"prompt,omitempty" toml:"prompt,omitempty"`
	Tasks  []scheduler.Task     `json:"tasks" yaml:"tasks" toml:"tasks"`
	Files  []workspace.FileNode `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty"`
}

// Format is a plan file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported plan file extension %q", filepath.Ext(path))
}

// Load reads a plan file and validates its task graph.
func Load(path string) (Project, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Project{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("reading plan: %w", err)
	}
	p, err := Decode(data, format)
	if err != nil {
		return Project{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Decode parses a plan document without validating it.
func Decode(data []byte, format Format) (Project, error) {
	var p Project
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &p)
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	case FormatTOML:
		_, err = toml.Decode(string(data), &p)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return Project{}, err
	}
	return p, nil
}

// Encode renders the plan in the given format.
func Encode(p Project, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Save writes the plan to path, choosing the encoding from its extension.
func Save(p Project, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(p, format)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing plan to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the tasks form a valid dependency graph.
func (p Project) Validate() error {
	_, err := scheduler.Build(p.Tasks)
	return err
}

// Slug derives the repository name from a project name: lower case with
// whitespace runs replaced by dashes.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
