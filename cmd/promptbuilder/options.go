package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// scanFlags holds the flags shared by tokenize-dir and dir-prompt.
type scanFlags struct {
	output        string
	ignore        []string
	skip          []string
	gitIgnore     bool
	profile       string
	noConfig      bool
	quiet         bool
	printMode     bool
	copyMode      bool
	sshCopy       bool
	encoding      string
	model         string
	tokenizerFile string
}

func addScanFlags(cmd *cobra.Command, f *scanFlags) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Specify output file path. If not provided, outputs to stdout")
	cmd.Flags().StringArrayVarP(&f.ignore, "ignore", "i", nil, "Ignore files matching the given glob pattern. Can be used multiple times")
	cmd.Flags().StringArrayVarP(&f.skip, "skip", "s", nil, "Skip lines containing the specified substring. Can be used multiple times")
	cmd.Flags().BoolVar(&f.gitIgnore, "gitignore", false, "Also ignore files matched by the directory's .gitignore")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Profile to apply from the directory's "+configFileName+" file")
	cmd.Flags().BoolVar(&f.noConfig, "no-config", false, "Do not read the directory's "+configFileName+" file")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Do not report skipped files")
	cmd.Flags().BoolVar(&f.printMode, "print", false, "Write output to stdout or --output (overrides the default output mode)")
	cmd.Flags().BoolVar(&f.copyMode, "copy", false, "Copy output to the system clipboard")
	cmd.Flags().BoolVar(&f.sshCopy, "ssh-copy", false, "Copy output via an OSC 52 terminal escape (works over SSH)")
}

func addTokenizerFlags(cmd *cobra.Command, f *scanFlags) {
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "tiktoken encoding to count with (default "+defaultEncoding+")")
	cmd.Flags().StringVar(&f.model, "model", "", "Count with the tiktoken encoding of this model instead of --encoding")
	cmd.Flags().StringVar(&f.tokenizerFile, "tokenizer-file", "", "Count with a HuggingFace tokenizer.json instead of tiktoken")
}

// outputMode picks the output mode from --print, --copy and --ssh-copy,
// falling back to fallback (then print) when none is given.
func (f *scanFlags) outputMode(fallback string) (string, error) {
	var chosen []string
	for _, m := range []struct {
		set  bool
		mode string
	}{
		{f.printMode, outputModePrint},
		{f.copyMode, outputModeCopy},
		{f.sshCopy, outputModeSSHCopy},
	} {
		if m.set {
			chosen = append(chosen, m.mode)
		}
	}

	switch {
	case len(chosen) > 1:
		return "", fmt.Errorf("only one of --print, --copy, or --ssh-copy may be set (got --%s)", strings.Join(chosen, ", --"))
	case len(chosen) == 1:
		return chosen[0], nil
	case fallback != "":
		return fallback, nil
	default:
		return outputModePrint, nil
	}
}

// runOptions is the fully resolved configuration of one scan.
type runOptions struct {
	dir        string
	output     string
	outputMode string
	ignore     []string
	skip       []string
	gitIgnore  bool
	configPath string
	tokenizer  tokenizerOptions
}

// resolveRunOptions merges the directory's config file, the per-user
// settings and the command-line flags. Rules from the file come first and
// flag values are appended after them.
func resolveRunOptions(dir string, f *scanFlags, settings userSettings) (*runOptions, error) {
	mode, err := f.outputMode(settings.Output)
	if err != nil {
		return nil, err
	}

	opts := &runOptions{
		dir:        dir,
		output:     f.output,
		outputMode: mode,
		gitIgnore:  f.gitIgnore,
		tokenizer: tokenizerOptions{
			Encoding: f.encoding,
			Model:    f.model,
			File:     f.tokenizerFile,
		},
	}
	if opts.tokenizer.Encoding == "" {
		opts.tokenizer.Encoding = settings.Encoding
	}

	if !f.noConfig {
		path := filepath.Join(dir, configFileName)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			rules, err := readDirConfig(path, f.profile)
			if err != nil {
				return nil, err
			}
			opts.configPath = path
			opts.ignore = append(opts.ignore, rules.ignore...)
			opts.skip = append(opts.skip, rules.skip...)
		} else if f.profile != "" {
			return nil, fmt.Errorf("--profile %s given but %s does not exist", f.profile, path)
		}
	} else if f.profile != "" {
		return nil, fmt.Errorf("--profile cannot be combined with --no-config")
	}

	opts.ignore = append(opts.ignore, f.ignore...)
	opts.skip = append(opts.skip, f.skip...)
	return opts, nil
}

// reservedNames lists the base names the scan must never emit: the loaded
// config file and an output file written into the scanned directory.
func (o *runOptions) reservedNames() []string {
	var names []string
	if o.configPath != "" {
		names = append(names, configFileName)
	}
	if o.output != "" && o.outputMode == outputModePrint && sameDir(filepath.Dir(o.output), o.dir) {
		names = append(names, filepath.Base(o.output))
	}
	return names
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return false
	}
	return absA == absB
}
