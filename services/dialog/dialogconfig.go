package dialog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"concierge/config"

	"gopkg.in/yaml.v3"
)

// SignalSet declares the phrase evidence for one intent.
// any: whole-word phrase match; all: every token present as a set;
// ordered: tokens present in input order, not necessarily contiguous.
type SignalSet struct {
	Any     []string   `yaml:"any"`
	All     [][]string `yaml:"all"`
	Ordered [][]string `yaml:"ordered"`
}

// IntentSignals is one entry of intent_signals.yaml.
type IntentSignals struct {
	Signals             SignalSet `yaml:"signals"`
	RequiredSlots       []string  `yaml:"required_slots"`
	IntentDefiningSlots []string  `yaml:"intent_defining_slots"`
	IsBooking           bool      `yaml:"is_booking"`
}

// SignalsConfig is the parsed intent_signals.yaml.
type SignalsConfig struct {
	Intents map[string]IntentSignals `yaml:"intents"`
}

// ActionRef names a backend action.
type ActionRef struct {
	Action string `yaml:"action"`
}

// Fallback is an alternative action taken when named slots are missing.
type Fallback struct {
	Action      string `yaml:"action"`
	WhenMissing struct {
		AnyOf []string `yaml:"any_of"`
	} `yaml:"when_missing"`
}

// IntentExecution is one entry of intent_execution.yaml.
type IntentExecution struct {
	Commit    ActionRef  `yaml:"commit"`
	Fallbacks []Fallback `yaml:"fallbacks"`
}

// ExecutionConfig is the parsed intent_execution.yaml.
type ExecutionConfig struct {
	Intents map[string]IntentExecution `yaml:"intents"`
}

// LoadSignalsConfig parses an intent_signals.yaml file.
func LoadSignalsConfig(path string) (*SignalsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intent signals config: %w", err)
	}
	var cfg SignalsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse intent signals config: %w", err)
	}
	return &cfg, nil
}

// LoadExecutionConfig parses an intent_execution.yaml file.
func LoadExecutionConfig(path string) (*ExecutionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intent execution config: %w", err)
	}
	var cfg ExecutionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse intent execution config: %w", err)
	}
	return &cfg, nil
}

var (
	sharedOnce      sync.Once
	sharedSignals   *SignalsConfig
	sharedExecution *ExecutionConfig
	sharedErr       error
)

// SharedConfigs loads both dialog YAML configs once per process from
// the configured directory. The compiled results are immutable after
// warmup and shared read-only.
func SharedConfigs() (*SignalsConfig, *ExecutionConfig, error) {
	sharedOnce.Do(func() {
		dir := config.AppConfig.DialogConfigDir
		if dir == "" {
			dir = "./config"
		}
		sharedSignals, sharedErr = LoadSignalsConfig(filepath.Join(dir, "intent_signals.yaml"))
		if sharedErr != nil {
			return
		}
		sharedExecution, sharedErr = LoadExecutionConfig(filepath.Join(dir, "intent_execution.yaml"))
	})
	return sharedSignals, sharedExecution, sharedErr
}
