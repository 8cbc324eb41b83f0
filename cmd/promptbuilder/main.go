package main

import (
	"fmt"
	"os"

	_ "github.com/agusx1211/promptbuilder/internal/quietlog"
	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "dev"

type scanMode int

const (
	modeTokenCount scanMode = iota
	modePrompt
)

// tokenizerFactory is swapped out in tests.
var tokenizerFactory = newTokenizer

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "promptbuilder",
		Short: "Processes files in a directory",
		Long: `promptbuilder reads the files directly inside a directory, drops
ignored files and skipped lines, and either reports how many tokens each file
encodes to or concatenates the files into a single prompt.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newTokenizeDirCmd(),
		newDirPromptCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newTokenizeDirCmd() *cobra.Command {
	flags := &scanFlags{}
	cmd := &cobra.Command{
		Use:     "tokenize-dir <directory>",
		Aliases: []string{"count-tokens"},
		Short:   "Tokenize contents of files in the specified directory and display token counts",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], flags, modeTokenCount)
		},
	}
	addScanFlags(cmd, flags)
	addTokenizerFlags(cmd, flags)
	return cmd
}

func newDirPromptCmd() *cobra.Command {
	flags := &scanFlags{}
	cmd := &cobra.Command{
		Use:     "dir-prompt <directory>",
		Aliases: []string{"build-prompt"},
		Short:   "Build prompts from file names and their contents",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], flags, modePrompt)
		},
	}
	addScanFlags(cmd, flags)
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage per-user defaults stored in ~/" + configFileName,
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "set-output <print|copy|ssh-copy>",
		Short:     "Set the default output mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{outputModePrint, outputModeCopy, outputModeSSHCopy},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writeUserDefaultOutputMode(args[0])
			if err != nil {
				return err
			}
			mode, _ := normalizeOutputMode(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Default output mode set to %s in %s\n", mode, path)
			return nil
		},
	})
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "promptbuilder %s\n", version)
		},
	}
}

// runScan validates the directory, compiles the filters, opens the sink and
// (for token counts) loads the tokenizer before touching any file. Any
// failure up to that point produces no output.
func runScan(cmd *cobra.Command, dir string, flags *scanFlags, mode scanMode) error {
	rep := newReporter(cmd.ErrOrStderr(), flags.quiet)

	if err := validateDirectory(dir); err != nil {
		return err
	}

	settings, err := readUserSettings()
	if err != nil {
		return err
	}
	opts, err := resolveRunOptions(dir, flags, settings)
	if err != nil {
		return err
	}

	filter := NewFilter(dir, opts.ignore, opts.gitIgnore, rep)
	for _, name := range opts.reservedNames() {
		filter.Reserve(name)
	}

	sink, err := openSink(opts.outputMode, opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer sink.Close()

	var render recordRenderer = promptRenderer{}
	if mode == modeTokenCount {
		tokenizer, err := tokenizerFactory(opts.tokenizer)
		if err != nil {
			return err
		}
		render = tokenCountRenderer{tokenizer: tokenizer}
	}

	if err := scanDirectory(dir, filter, opts.skip, render, sink, rep); err != nil {
		return err
	}
	return sink.Finish()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		newReporter(os.Stderr, false).Errorf("%v", err)
		os.Exit(1)
	}
}
