package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docere-indexer/internal/core/domain"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
)

// Ensure ProjectLoader implements the interface.
var _ driven.ProjectConfigLoader = (*ProjectLoader)(nil)

// configNames are the accepted configuration file names, in lookup order.
var configNames = []string{"config.toml", "config.yaml", "config.yml"}

// defaultNames are the accepted default configuration file names.
var defaultNames = []string{"default.toml", "default.yaml", "default.yml"}

// fieldConfigKeys are the keys of the config section the core interprets.
var fieldConfigKeys = map[string]bool{
	"slug":       true,
	"title":      true,
	"metadata":   true,
	"textdata":   true,
	"facsimiles": true,
	"extra":      true,
}

// ProjectLoader loads project configuration from <dir>/<project>/config.*,
// merged over an optional <dir>/default.*.
//
// Merge policy: each top-level key of the project file replaces the default
// one, except "config", whose own top-level keys are merged the same way.
type ProjectLoader struct {
	dir string
}

// NewProjectLoader creates a loader rooted at the projects directory.
func NewProjectLoader(dir string) *ProjectLoader {
	return &ProjectLoader{dir: dir}
}

// Load reads, merges and validates the configuration of a project.
func (l *ProjectLoader) Load(ctx context.Context, projectID string) (*domain.ProjectConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if projectID == "" || strings.ContainsAny(projectID, `/\`) || projectID == "." || projectID == ".." {
		return nil, fmt.Errorf("%w: invalid project id %q", domain.ErrInvalidInput, projectID)
	}

	projectDir := filepath.Join(l.dir, projectID)
	project, err := readFirst(projectDir, configNames)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, projectID)
	}

	defaults, err := readFirst(l.dir, defaultNames)
	if err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}

	cfg, err := decode(merge(defaults, project))
	if err != nil {
		return nil, fmt.Errorf("%w: project %s: %w", domain.ErrInvalidInput, projectID, err)
	}

	cfg.ID = projectID
	cfg.Dir = projectDir
	resolveScripts(&cfg.Scripts, projectDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, err)
	}
	return cfg, nil
}

// readFirst parses the first existing file among names in dir.
// Returns nil when none exists.
func readFirst(dir string, names []string) (map[string]any, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}

		out := make(map[string]any)
		if filepath.Ext(name) == ".toml" {
			err = toml.Unmarshal(data, &out)
		} else {
			err = yaml.Unmarshal(data, &out)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
		}
		return out, nil
	}
	return nil, nil
}

func merge(defaults, project map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(project))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range project {
		merged[k] = v
	}

	base, _ := defaults["config"].(map[string]any)
	over, _ := project["config"].(map[string]any)
	if base != nil && over != nil {
		section := make(map[string]any, len(base)+len(over))
		for k, v := range base {
			section[k] = v
		}
		for k, v := range over {
			section[k] = v
		}
		merged["config"] = section
	}
	return merged
}

// decode converts the merged document into a ProjectConfig. Keys of the
// config section the core does not interpret are kept in FieldConfig.Extra.
func decode(m map[string]any) (*domain.ProjectConfig, error) {
	if section, ok := m["config"].(map[string]any); ok {
		// An explicit extra table is kept; unknown keys are added to it.
		extra := make(map[string]any)
		if explicit, ok := section["extra"].(map[string]any); ok {
			for k, v := range explicit {
				extra[k] = v
			}
		}
		unknown := false
		for k, v := range section {
			if !fieldConfigKeys[k] {
				extra[k] = v
				unknown = true
			}
		}
		if unknown {
			copied := make(map[string]any, len(section))
			for k, v := range section {
				copied[k] = v
			}
			copied["extra"] = extra
			m["config"] = copied
		}
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var cfg domain.ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveScripts makes script file references absolute. Names without a
// file extension are registered function names and stay as they are.
func resolveScripts(s *domain.Scripts, dir string) {
	resolve := func(ref string) string {
		if ref == "" || filepath.Ext(ref) == "" || filepath.IsAbs(ref) {
			return ref
		}
		return filepath.Join(dir, ref)
	}
	s.Normalize = resolve(s.Normalize)
	s.Entities = resolve(s.Entities)
	s.Metadata = resolve(s.Metadata)
	s.Facsimiles = resolve(s.Facsimiles)
	for i, inc := range s.Include {
		s.Include[i] = resolve(inc)
	}
}
