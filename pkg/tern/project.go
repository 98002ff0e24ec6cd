package tern

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultMaxCallDepth is the call depth at which evaluation fails with
// StackOverflowError unless tern.toml says otherwise.
const DefaultMaxCallDepth = 10000

// ProjectConfig represents a tern.toml project configuration file.
type ProjectConfig struct {
	Run   RunConfig   `toml:"run"`
	Check CheckConfig `toml:"check"`
}

// RunConfig configures the evaluator.
type RunConfig struct {
	// MaxCallDepth bounds nested function calls. Zero means the default.
	MaxCallDepth int `toml:"max-call-depth,omitempty"`
}

// CheckConfig configures the type checker.
type CheckConfig struct {
	// DefaultInt resolves numeric operands whose type is still unknown at the
	// end of checking to int. When false such programs fail to check.
	DefaultInt *bool `toml:"default-int,omitempty"`
}

// DefaultProjectConfig returns the settings used when no tern.toml is found.
func DefaultProjectConfig() *ProjectConfig {
	defaultInt := true
	return &ProjectConfig{
		Run:   RunConfig{MaxCallDepth: DefaultMaxCallDepth},
		Check: CheckConfig{DefaultInt: &defaultInt},
	}
}

// LoadProjectConfig loads a tern.toml file from the given path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	config := DefaultProjectConfig()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing %s: unknown key %s", path, undecoded[0])
	}
	if config.Run.MaxCallDepth < 0 {
		return nil, fmt.Errorf("parsing %s: max-call-depth must not be negative", path)
	}
	if config.Run.MaxCallDepth == 0 {
		config.Run.MaxCallDepth = DefaultMaxCallDepth
	}
	return config, nil
}

// FindProjectConfig searches for a tern.toml file starting from dir and
// walking up to parent directories. Returns the path to tern.toml and the
// parsed config, or ("", nil, nil) if not found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, "tern.toml")
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

type projectConfigKey struct{}

type projectConfigEntry struct {
	path   string
	config *ProjectConfig
}

// ContextWithProjectConfig attaches a project config to the context.
func ContextWithProjectConfig(ctx context.Context, configPath string, config *ProjectConfig) context.Context {
	return context.WithValue(ctx, projectConfigKey{}, &projectConfigEntry{
		path:   configPath,
		config: config,
	})
}

// ProjectConfigFromContext returns the attached project config, falling back
// to the defaults.
func ProjectConfigFromContext(ctx context.Context) (string, *ProjectConfig) {
	if v := ctx.Value(projectConfigKey{}); v != nil {
		e := v.(*projectConfigEntry)
		if e.config != nil {
			return e.path, e.config
		}
	}
	return "", DefaultProjectConfig()
}

// ensureProjectConfig discovers tern.toml next to the source unless a config
// is already attached.
func ensureProjectConfig(ctx context.Context, dir string) (context.Context, error) {
	if v := ctx.Value(projectConfigKey{}); v != nil {
		return ctx, nil
	}
	configPath, config, err := FindProjectConfig(dir)
	if err != nil {
		return ctx, fmt.Errorf("finding tern.toml: %w", err)
	}
	if config == nil {
		return ctx, nil
	}
	return ContextWithProjectConfig(ctx, configPath, config), nil
}

func (c CheckConfig) defaultInt() bool {
	return c.DefaultInt == nil || *c.DefaultInt
}
