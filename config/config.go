// Package config loads the coordinator configuration from a JSON or YAML
// file, with environment overrides prefixed K_ (K_MQTT__BROKER overrides
// mqtt.broker).
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/v2x/core/coordinator"
	"github.com/kilianp07/v2x/core/metrics"
	"github.com/kilianp07/v2x/infra/mqtt"
)

type Config struct {
	MQTT        mqtt.Config        `json:"mqtt"`
	Coordinator coordinator.Config `json:"coordinator"`
	Metrics     metrics.Config     `json:"metrics"`
	Sentry      SentryConfig       `json:"sentry"`
	Demo        DemoConfig         `json:"demo"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Coordinator.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Demo.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Coordinator.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
