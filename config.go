package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSettleDelay      = 10 * time.Second
	maxSettleDelay          = 5 * time.Minute
	defaultBackoffThreshold = 50
	defaultFailureMemoSize  = 256
	maxFailureMemoSize      = 65536
	defaultFailureMemoTTL   = 10 * time.Minute
)

// Sort method constants
const (
	SortNatural    = 0 // Natural sort order (e.g., file1, file2, file10)
	SortSimple     = 1 // Simple string sort (lexicographical)
	SortEntryOrder = 2 // Maintain discovery order (no sort)
)

// getDefaultKeybindings returns the default keybinding configuration
func getDefaultKeybindings() map[string][]string {
	return GetDefaultKeybindings()
}

// validateKeybindings checks key formats and detects conflicts
func validateKeybindings(keybindings map[string][]string) error {
	keyToAction := make(map[string]string)
	validKeys := getKeyMapping()

	for action, keys := range keybindings {
		if _, known := GetActionDescriptions()[action]; !known {
			return fmt.Errorf("unknown action '%s'", action)
		}
		for _, keyStr := range keys {
			if err := validateKeyString(keyStr, validKeys); err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %v", keyStr, action, err)
			}

			if existingAction, exists := keyToAction[keyStr]; exists {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existingAction, action)
			}
			keyToAction[keyStr] = action
		}
	}

	return nil
}

// validateKeyString validates a single key string format
func validateKeyString[V any](keyStr string, validKeys map[string]V) error {
	if keyStr == "" {
		return fmt.Errorf("empty key string")
	}
	parts := strings.Split(keyStr, "+")

	// Last part should be the actual key
	keyName := parts[len(parts)-1]
	if _, ok := validKeys[keyName]; !ok {
		return fmt.Errorf("unknown key: %s", keyName)
	}

	for i := 0; i < len(parts)-1; i++ {
		modifier := strings.ToLower(parts[i])
		if modifier != "shift" && modifier != "ctrl" && modifier != "alt" {
			return fmt.Errorf("unknown modifier: %s", parts[i])
		}
	}

	return nil
}

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

type Config struct {
	SettleDelay             time.Duration       `yaml:"settle_delay"`
	Fullscreen              bool                `yaml:"fullscreen"`
	SortMethod              int                 `yaml:"sort_method"`
	IncludeArchives         bool                `yaml:"include_archives"`
	Seed                    int64               `yaml:"seed"`
	FailureBackoffThreshold int                 `yaml:"failure_backoff_threshold"`
	FailureMemoSize         int                 `yaml:"failure_memo_size"`
	FailureMemoTTL          time.Duration       `yaml:"failure_memo_ttl"`
	MetricsAddr             string              `yaml:"metrics_addr"`
	Keybindings             map[string][]string `yaml:"keybindings"`
}

func defaultConfig() Config {
	return Config{
		SettleDelay:             defaultSettleDelay,
		Fullscreen:              false,
		SortMethod:              SortNatural,
		IncludeArchives:         false,
		Seed:                    0, // time-based
		FailureBackoffThreshold: defaultBackoffThreshold,
		FailureMemoSize:         defaultFailureMemoSize,
		FailureMemoTTL:          defaultFailureMemoTTL,
		Keybindings:             getDefaultKeybindings(),
	}
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "slideshow.yaml"
	}
	return filepath.Join(homeDir, ".slideshow.yaml")
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	config := defaultConfig()

	result := ConfigLoadResult{
		Config:   config,
		HasError: false,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		return result
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		warnLog("Invalid config file %s, using defaults: %v", configPath, err)
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
		return result
	}

	warn := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		warnLog("%s", msg)
		result.Status = "Warning"
		result.Warnings = append(result.Warnings, msg)
	}

	if config.SettleDelay < 0 {
		warn("settle_delay %v is negative, using %v", config.SettleDelay, defaultSettleDelay)
		config.SettleDelay = defaultSettleDelay
	} else if config.SettleDelay > maxSettleDelay {
		warn("settle_delay %v is too long, using %v", config.SettleDelay, maxSettleDelay)
		config.SettleDelay = maxSettleDelay
	}

	if config.SortMethod < SortNatural || config.SortMethod > SortEntryOrder {
		warn("unknown sort_method %d, using natural", config.SortMethod)
		config.SortMethod = SortNatural
	}

	if config.FailureBackoffThreshold < 0 {
		config.FailureBackoffThreshold = defaultBackoffThreshold
	}

	// Validate failure memo size (0 disables, maximum 65536)
	if config.FailureMemoSize < 0 {
		config.FailureMemoSize = defaultFailureMemoSize
	} else if config.FailureMemoSize > maxFailureMemoSize {
		config.FailureMemoSize = maxFailureMemoSize
	}

	if config.FailureMemoTTL <= 0 {
		config.FailureMemoTTL = defaultFailureMemoTTL
	}

	// Fill in missing keybindings with defaults
	if config.Keybindings == nil {
		config.Keybindings = getDefaultKeybindings()
	} else {
		for action, defaultKeys := range getDefaultKeybindings() {
			if _, exists := config.Keybindings[action]; !exists {
				config.Keybindings[action] = defaultKeys
			}
		}

		if err := validateKeybindings(config.Keybindings); err != nil {
			warn("Invalid keybindings detected, using defaults: %v", err)
			config.Keybindings = getDefaultKeybindings()
		}
	}

	// The terminate key is the only way out once the window is up.
	if len(config.Keybindings["exit"]) == 0 {
		warn("no key bound to exit, using %v", getDefaultKeybindings()["exit"])
		config.Keybindings["exit"] = getDefaultKeybindings()["exit"]
	}

	result.Config = config
	return result
}

func saveConfigToPath(config Config, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("save config to %s: %w", configPath, err)
	}
	return nil
}
