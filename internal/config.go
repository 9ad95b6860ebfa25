// Configuration loading (A2), condensed from the teacher's config.go: a
// single YAML document with one top-level section, cosched_config, mapped
// onto Config.
//
//	cosched_config:
//	  instance: cosched
//	  discipline: pending
//	  tick_ms: 1
//	  max_tasks: 8
//	  max_slots: 128
//	  shutdown_max_wait: 5s
//	  log_config:
//	    ...

package cosched_internal

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	COSCHED_CONFIG_SECTION_NAME = "cosched_config"

	CONFIG_INSTANCE_DEFAULT          = "cosched"
	CONFIG_SHUTDOWN_MAX_WAIT_DEFAULT = 5 * time.Second
)

// Discipline selects which of the three dispatch disciplines a Config
// wires up.
type Discipline string

const (
	DisciplinePending Discipline = "pending"
	DisciplinePhase   Discipline = "phase"
	DisciplineTable   Discipline = "table"
)

// Config is the root configuration structure, decoded from the
// cosched_config YAML section.
type Config struct {
	Instance        string        `yaml:"instance"`
	Discipline      Discipline    `yaml:"discipline"`
	TickMs          int           `yaml:"tick_ms"`
	MaxTasks        int           `yaml:"max_tasks"`
	MaxSlots        int           `yaml:"max_slots"`
	ShutdownMaxWait time.Duration `yaml:"shutdown_max_wait"`
	LoggerConfig    *LoggerConfig `yaml:"log_config"`
}

// DefaultConfig returns a Config with every field set to its documented
// default (spec.md §6's MAX_TASKS/MAX_SLOTS/TICK_MS defaults).
func DefaultConfig() *Config {
	return &Config{
		Instance:        CONFIG_INSTANCE_DEFAULT,
		Discipline:      DisciplinePending,
		TickMs:          DEFAULT_TICK_MS,
		MaxTasks:        DEFAULT_MAX_TASKS,
		MaxSlots:        DEFAULT_MAX_SLOTS,
		ShutdownMaxWait: CONFIG_SHUTDOWN_MAX_WAIT_DEFAULT,
		LoggerConfig:    DefaultLoggerConfig(),
	}
}

// LoadConfig loads Config from cfgFile (or from buf directly, for tests:
// pass buf non-nil and cfgFile is ignored). Missing fields keep their
// DefaultConfig values.
func LoadConfig(cfgFile string, buf []byte) (*Config, error) {
	if buf == nil {
		f, err := os.Open(cfgFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		buf, err = io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
		}
	}

	docNode := yaml.Node{}
	if err := yaml.Unmarshal(buf, &docNode); err != nil {
		return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
	}

	cfg := DefaultConfig()
	if docNode.Kind == yaml.DocumentNode && len(docNode.Content) > 0 {
		rootNode := docNode.Content[0]
		if rootNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("file: %q: invalid YAML root node %q", cfgFile, rootNode.Tag)
		}
		for i := 0; i+1 < len(rootNode.Content); i += 2 {
			key, valNode := rootNode.Content[i], rootNode.Content[i+1]
			if key.Value == COSCHED_CONFIG_SECTION_NAME {
				if err := valNode.Decode(cfg); err != nil {
					return nil, fmt.Errorf("file: %q: %v", cfgFile, err)
				}
			}
		}
	}

	switch cfg.Discipline {
	case DisciplinePending, DisciplinePhase, DisciplineTable:
	default:
		return nil, fmt.Errorf("file: %q: invalid discipline %q", cfgFile, cfg.Discipline)
	}

	return cfg, nil
}
