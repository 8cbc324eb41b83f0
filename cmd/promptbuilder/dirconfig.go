package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFileName is both the per-directory rules file and the per-user
// settings file in the home directory.
const configFileName = ".promptbuilder"

type dirProfile struct {
	Ignore []string `yaml:"ignore"`
	Skip   []string `yaml:"skip"`
}

type dirConfig struct {
	Ignore   []string              `yaml:"ignore"`
	Skip     []string              `yaml:"skip"`
	Profiles map[string]dirProfile `yaml:"profiles"`
}

type ruleSet struct {
	ignore []string
	skip   []string
}

// readDirConfig loads the rules in path. The named profile is layered on top
// of the top-level rules; with no name the "default" profile is used if it
// exists. Naming a profile the file does not define is an error.
func readDirConfig(path string, profile string) (*ruleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg dirConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	rules := &ruleSet{
		ignore: append([]string{}, cfg.Ignore...),
		skip:   append([]string{}, cfg.Skip...),
	}

	name := profile
	if name == "" {
		name = "default"
	}
	prof, ok := cfg.Profiles[name]
	if !ok {
		if profile != "" {
			return nil, fmt.Errorf("profile %q not found in %s (available: %s)", profile, path, profileNames(cfg))
		}
		return rules, nil
	}
	rules.ignore = append(rules.ignore, prof.Ignore...)
	rules.skip = append(rules.skip, prof.Skip...)
	return rules, nil
}

func profileNames(cfg dirConfig) string {
	if len(cfg.Profiles) == 0 {
		return "none"
	}
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
