package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	outputModePrint   = "print"
	outputModeCopy    = "copy"
	outputModeSSHCopy = "ssh-copy"
)

// userSettings are the per-user defaults kept in ~/.promptbuilder.
type userSettings struct {
	Output   string
	Encoding string
}

func normalizeOutputMode(mode string) (string, bool) {
	m := strings.TrimSpace(strings.ToLower(mode))
	switch m {
	case outputModePrint:
		return outputModePrint, true
	case outputModeCopy:
		return outputModeCopy, true
	case outputModeSSHCopy, "sshcopy", "ssh", "osc52":
		return outputModeSSHCopy, true
	default:
		return "", false
	}
}

// loadSettingsMap reads path as a YAML mapping. A missing or blank file
// yields an empty map.
func loadSettingsMap(path string) (map[string]any, error) {
	cfg := make(map[string]any)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cfg == nil {
		cfg = make(map[string]any)
	}
	return cfg, nil
}

func readUserSettingsFromFile(path string) (userSettings, error) {
	var settings userSettings
	cfg, err := loadSettingsMap(path)
	if err != nil {
		return settings, err
	}

	if raw, ok := cfg["output"]; ok {
		outputStr, ok := raw.(string)
		if !ok {
			return settings, fmt.Errorf("invalid output value in %s: expected string", path)
		}
		normalized, ok := normalizeOutputMode(outputStr)
		if !ok {
			return settings, fmt.Errorf("invalid output mode %q in %s (expected print, copy, or ssh-copy)", outputStr, path)
		}
		settings.Output = normalized
	}

	if raw, ok := cfg["encoding"]; ok {
		encoding, ok := raw.(string)
		if !ok {
			return settings, fmt.Errorf("invalid encoding value in %s: expected string", path)
		}
		settings.Encoding = strings.TrimSpace(encoding)
	}
	return settings, nil
}

func userSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// readUserSettings loads ~/.promptbuilder. A missing home directory or file
// yields zero settings.
func readUserSettings() (userSettings, error) {
	path, err := userSettingsPath()
	if err != nil {
		return userSettings{}, nil
	}
	return readUserSettingsFromFile(path)
}

// storeOutputMode sets the output key in the settings file at path, keeping
// every other key and the file's permissions.
func storeOutputMode(path string, mode string) error {
	normalized, ok := normalizeOutputMode(mode)
	if !ok {
		return fmt.Errorf("invalid output mode %q (expected print, copy, or ssh-copy)", mode)
	}
	cfg, err := loadSettingsMap(path)
	if err != nil {
		return err
	}
	cfg["output"] = normalized

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode settings for %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode settings for %s: %w", path, err)
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, buf.Bytes(), perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeUserDefaultOutputMode(mode string) (string, error) {
	path, err := userSettingsPath()
	if err != nil {
		return "", err
	}
	return path, storeOutputMode(path, mode)
}
