package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/codetrim/pkg/trimerr"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// wrapperKey may hold every option in YAML and JSON files
const wrapperKey = "codetrim"

// FileNames are the config files Discover looks for, in order
var FileNames = []string{
	".codetrim.yaml",
	".codetrim.yml",
	".codetrim.json",
	".codetrim.hcl",
}

// 🎯 Load loads and validates the configuration in path
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, trimerr.New(trimerr.ConfigNotFound, "config file does not exist: "+path, "Check the --config path")
		}
		return nil, trimerr.Wrap(trimerr.InvalidConfig, errors.Errorf("reading config file: %w", err), "")
	}

	p := GetParser(path)
	if p == nil {
		return nil, trimerr.New(trimerr.InvalidConfig,
			"no parser found for file: "+path,
			"Use a .yaml, .yml, .json or .hcl config file")
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		if _, ok := trimerr.CodeOf(err); ok {
			return nil, err
		}
		return nil, trimerr.Wrap(trimerr.InvalidConfig, err, "Fix the syntax of "+filepath.Base(path))
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Discover loads the first known config file in dir, or the defaults when
// there is none
func Discover(ctx context.Context, dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(ctx, path)
		}
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Msg("no config file found, using defaults")
	return Default(), nil
}

// normalizeKeys unwraps the optional "codetrim" key and rewrites hyphenated
// keys with underscores, including inside rules
func normalizeKeys(raw map[string]any) map[string]any {
	if inner, ok := raw[wrapperKey].(map[string]any); ok && len(raw) == 1 {
		raw = inner
	}

	out := make(map[string]any, len(raw))
	for k, v := range raw {
		key := strings.ReplaceAll(k, "-", "_")
		if key == "rules" {
			if list, ok := v.([]any); ok {
				rules := make([]any, len(list))
				for i, item := range list {
					if m, ok := item.(map[string]any); ok {
						rules[i] = normalizeKeys(m)
					} else {
						rules[i] = item
					}
				}
				v = rules
			}
		}
		out[key] = v
	}
	return out
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

// 📝 Parse parses the config from YAML
func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	cfg := Default()
	if len(raw) == 0 {
		return cfg, nil
	}

	normalized, err := yaml.Marshal(normalizeKeys(raw))
	if err != nil {
		return nil, errors.Errorf("normalizing YAML: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(normalized))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	return cfg, nil
}
