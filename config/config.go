package config

import (
	"encoding/json"
	"fmt"
	"league/log"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	ConfigFileName = "config.json"
	defaultProgram = "claude"

	// NamespacePrefix is prepended to every multiplexer session name this
	// tool creates, so cleanup never touches sessions it doesn't own.
	NamespacePrefix = "league_"
)

// Config is the application configuration, loaded from {config_dir}/config.json.
// Unknown keys are ignored by encoding/json; an unparseable file is backed up
// and replaced with defaults rather than treated as a hard error, matching
// the teacher's config.go LoadConfig behavior.
type Config struct {
	// DefaultProgram is the assistant command launched for new instances.
	DefaultProgram string `json:"default_program"`
	// AutoYes is propagated to new instances' auto_yes flag.
	AutoYes bool `json:"auto_yes"`
	// DaemonPollInterval is the interval (ms) at which the daemon polls
	// auto-yes sessions.
	DaemonPollInterval int `json:"daemon_poll_interval"`
	// BranchPrefix is prepended to sanitized titles to form branch names.
	// Must end with "/" by convention.
	BranchPrefix string `json:"branch_prefix"`
}

// GetConfigDir returns the path to the application's configuration directory.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".league"), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	program, err := GetClaudeCommand()
	if err != nil {
		log.ErrorLog.Printf("failed to get claude command: %v", err)
		program = defaultProgram
	}

	return &Config{
		DefaultProgram:     program,
		AutoYes:            false,
		DaemonPollInterval: 1000,
		BranchPrefix: func() string {
			u, err := user.Current()
			if err != nil || u == nil || u.Username == "" {
				log.ErrorLog.Printf("failed to get current user: %v", err)
				return "league/"
			}
			return fmt.Sprintf("%s/", strings.ToLower(u.Username))
		}(),
	}
}

// GetClaudeCommand attempts to find the "claude" command in the user's shell.
// It checks in the following order:
//  1. Shell alias resolution: using "which" via the user's interactive shell
//  2. PATH lookup
//
// If both fail, it returns an error.
func GetClaudeCommand() (string, error) {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}

	var shellCmd string
	if strings.Contains(shell, "zsh") {
		shellCmd = "source ~/.zshrc &>/dev/null || true; which claude"
	} else if strings.Contains(shell, "bash") {
		shellCmd = "source ~/.bashrc &>/dev/null || true; which claude"
	} else {
		shellCmd = "which claude"
	}

	c := exec.Command(shell, "-c", shellCmd)
	output, err := c.Output()
	if err == nil && len(output) > 0 {
		path := strings.TrimSpace(string(output))
		if path != "" {
			aliasRegex := regexp.MustCompile(`(?:aliased to|->|=)\s*([^\s]+)`)
			matches := aliasRegex.FindStringSubmatch(path)
			if len(matches) > 1 {
				path = matches[1]
			}
			return path, nil
		}
	}

	claudePath, err := exec.LookPath("claude")
	if err == nil {
		return claudePath, nil
	}

	return "", fmt.Errorf("claude command not found in aliases or PATH")
}

// LoadConfig reads {config_dir}/config.json, creating it with defaults if
// absent. An unparseable file is backed up with a timestamped suffix and
// replaced with defaults rather than aborting startup.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}

		log.WarningLog.Printf("failed to read config file: %v", err)
		return DefaultConfig()
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		log.ErrorLog.Printf("failed to parse config file at %s: %v\nconfig content preview: %s", configPath, err, preview)

		backupPath := configPath + ".corrupt." + time.Now().Format("20060102-150405")
		if backupErr := os.WriteFile(backupPath, data, 0644); backupErr == nil {
			log.InfoLog.Printf("backed up corrupted config to: %s", backupPath)
		}

		return DefaultConfig()
	}

	return &config
}

func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveConfig persists config to disk.
func SaveConfig(config *Config) error {
	return saveConfig(config)
}
