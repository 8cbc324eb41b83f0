package main

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree with an isolated HOME and a word-count
// tokenizer.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIWithOutput(t, nil, args...)
}

func runCLIWithOutput(t *testing.T, stdout io.Writer, args ...string) cliResult {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	orig := tokenizerFactory
	tokenizerFactory = func(tokenizerOptions) (Tokenizer, error) { return wordTokenizer{}, nil }
	t.Cleanup(func() { tokenizerFactory = orig })

	var out, errOut bytes.Buffer
	root := newRootCmd()
	if stdout != nil {
		root.SetOut(stdout)
	} else {
		root.SetOut(&out)
	}
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func sortedLines(s string) []string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	sort.Strings(lines)
	return lines
}

func TestIgnoredFileIsOmitted(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "hello\nworld\n",
		"b.log": "skip this\nkeep this\n",
	})

	res := runCLI(t, "dir-prompt", dir, "--ignore", "*.log")
	require.NoError(t, res.err)
	assert.Equal(t, "a.txt\n\nhello\nworld\n\n", res.stdout)
	assert.NotContains(t, res.stdout, "b.log")
	assert.Contains(t, res.stderr, "Skipping ignored file: b.log")

	res = runCLI(t, "tokenize-dir", dir, "-i", "*.log")
	require.NoError(t, res.err)
	assert.Equal(t, "a.txt   2 tokens\n", res.stdout)
	assert.Contains(t, res.stderr, "Skipping ignored file: b.log")
}

func TestSkippedLinesInPrompt(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "keep\nDROP me\nkeep2\n"})

	res := runCLI(t, "dir-prompt", dir, "--skip", "DROP")
	require.NoError(t, res.err)
	assert.Equal(t, "a.txt\n\nkeep\nkeep2\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestSkippedLinesInTokenCount(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "one two\nDROP three four\nfive\n"})

	res := runCLI(t, "count-tokens", dir, "-s", "DROP")
	require.NoError(t, res.err)
	assert.Equal(t, "a.txt   3 tokens\n", res.stdout)
}

func TestUnreadableFileStillProducesRecord(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.bin"), []byte{0xff, 0xfe, 0xfd}, 0o644))

	res := runCLI(t, "dir-prompt", dir)
	require.NoError(t, res.err)
	assert.Equal(t, "bad.bin\n\n[Could not read contents]\n", res.stdout)
	assert.Contains(t, res.stderr, "Warning: Could not read file")
	assert.Contains(t, res.stderr, "bad.bin")

	res = runCLI(t, "tokenize-dir", dir)
	require.NoError(t, res.err)
	assert.Equal(t, "bad.bin   4 tokens\n", res.stdout)
	assert.Contains(t, res.stderr, "bad.bin")
}

func TestPermissionDeniedFileStillProducesRecord(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files regardless of mode")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.txt")
	require.NoError(t, os.WriteFile(path, []byte("secret"), 0o000))

	res := runCLI(t, "dir-prompt", dir)
	require.NoError(t, res.err)
	assert.Equal(t, "locked.txt\n\n[Could not read contents]\n", res.stdout)
	assert.Contains(t, res.stderr, "locked.txt")
}

func TestNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	writeFiles(t, dir, map[string]string{"plain.txt": "hi\n"})
	out := filepath.Join(dir, "out.txt")

	for _, mode := range []string{"dir-prompt", "tokenize-dir"} {
		res := runCLI(t, mode, file, "-o", out)
		require.Error(t, res.err)
		assert.ErrorIs(t, res.err, errNotDirectory)
		assert.Contains(t, res.err.Error(), file)
		assert.Empty(t, res.stdout)
		assert.NoFileExists(t, out)
	}
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x y z"})
	out := filepath.Join(t.TempDir(), "report.txt")

	res := runCLI(t, "tokenize-dir", dir, "--output", out)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a.txt   3 tokens\n", string(data))
}

func TestOutputFileInsideScannedDirectoryIsNotScanned(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x"})

	res := runCLI(t, "dir-prompt", dir, "-o", filepath.Join(dir, "prompt.txt"))
	require.NoError(t, res.err)

	data, err := os.ReadFile(filepath.Join(dir, "prompt.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a.txt\n\nx\n", string(data))
}

func TestOutputFileCannotBeCreated(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x"})
	out := filepath.Join(dir, "no", "such", "dir", "out.txt")

	res := runCLI(t, "dir-prompt", dir, "-o", out)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "failed to create output file '"+out+"'")
	assert.Empty(t, res.stdout)
}

func TestTokenizerInitFailureProcessesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x"})
	t.Setenv("HOME", t.TempDir())

	orig := tokenizerFactory
	tokenizerFactory = func(tokenizerOptions) (Tokenizer, error) { return nil, errors.New("missing vocabulary") }
	t.Cleanup(func() { tokenizerFactory = orig })

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"tokenize-dir", dir, "-i", "*.txt"})
	err := root.Execute()

	assert.ErrorContains(t, err, "missing vocabulary")
	assert.Empty(t, out.String())
	assert.NotContains(t, errOut.String(), "Skipping ignored file")
}

func TestWriteFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x"})

	res := runCLIWithOutput(t, failingWriter{}, "dir-prompt", dir)
	assert.ErrorContains(t, res.err, "disk full")
}

func TestInvalidPatternKeepsEveryFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a", "b.txt": "b c"})

	res := runCLI(t, "tokenize-dir", dir, "-i", "[")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"a.txt   1 tokens", "b.txt   2 tokens"}, sortedLines(res.stdout))
	assert.Contains(t, res.stderr, "Warning: Invalid ignore pattern '['. Ignoring.")
}

func TestDirectoriesAreNotTraversed(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"top.txt": "t"})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFiles(t, filepath.Join(dir, "sub"), map[string]string{"deep.txt": "d"})

	res := runCLI(t, "dir-prompt", dir)
	require.NoError(t, res.err)
	assert.Equal(t, "top.txt\n\nt\n", res.stdout)
}

func TestEmptyDirectory(t *testing.T) {
	res := runCLI(t, "tokenize-dir", t.TempDir())
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
}

func TestQuietSuppressesSkipLines(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a", "b.log": "b"})

	res := runCLI(t, "dir-prompt", dir, "-i", "*.log", "-i", "[", "--quiet")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stderr, "Skipping")
	assert.Contains(t, res.stderr, "Invalid ignore pattern")
}

func TestDirectoryConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeDirConfig(t, dir, sampleDirConfig)
	writeFiles(t, dir, map[string]string{
		"go.lock":   "locked",
		"notes.md":  "intro\nTODO later\n// generated\n",
		"server.go": "package main",
	})

	res := runCLI(t, "dir-prompt", dir, "--profile", "docs", "-q")
	require.NoError(t, res.err)
	assert.Equal(t, "notes.md\n\nintro\n", res.stdout)

	res = runCLI(t, "dir-prompt", dir, "--no-config", "-i", "*.go", "-i", "*.md")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "go.lock\n\nlocked\n")
	assert.Contains(t, res.stdout, configFileName+"\n\n"+sampleDirConfig+"\n")
	assert.NotContains(t, res.stdout, "notes.md")
	assert.NotContains(t, res.stdout, "server.go")
}

func TestMalformedDirectoryConfigIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeDirConfig(t, dir, "skip: {")

	res := runCLI(t, "dir-prompt", dir)
	assert.ErrorContains(t, res.err, "failed to parse")
	assert.Empty(t, res.stdout)
}

func TestGitIgnoreFlag(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{".gitignore": "*.tmp\n", "a.txt": "a", "b.tmp": "b"})

	res := runCLI(t, "tokenize-dir", dir, "--gitignore", "-i", ".gitignore")
	require.NoError(t, res.err)
	assert.Equal(t, "a.txt   1 tokens\n", res.stdout)
	assert.Contains(t, res.stderr, "Skipping ignored file: b.tmp")
}

func TestCopyModeUsesClipboard(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hi"})

	var copied string
	orig := deliverToClipboard
	deliverToClipboard = func(data string) error {
		copied = data
		return nil
	}
	t.Cleanup(func() { deliverToClipboard = orig })

	res := runCLI(t, "dir-prompt", dir, "--copy")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Equal(t, "a.txt\n\nhi\n", copied)

	res = runCLI(t, "dir-prompt", dir, "--copy", "-o", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, res.err)

	res = runCLI(t, "dir-prompt", dir, "--copy", "--print")
	assert.ErrorContains(t, res.err, "only one of")
}

func TestConfigSetOutput(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"config", "set-output", "ssh"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Default output mode set to ssh-copy")

	settings, err := readUserSettings()
	require.NoError(t, err)
	assert.Equal(t, outputModeSSHCopy, settings.Output)
}

func TestRequiresExactlyOneDirectory(t *testing.T) {
	assert.Error(t, runCLI(t, "dir-prompt").err)
	assert.Error(t, runCLI(t, "dir-prompt", t.TempDir(), t.TempDir()).err)
}

func TestVersionCommand(t *testing.T) {
	res := runCLI(t, "version")
	require.NoError(t, res.err)
	assert.Equal(t, "promptbuilder dev\n", res.stdout)
}

func TestCleanRunWritesNothingToStderr(t *testing.T) {
	assert.Equal(t, io.Discard, log.Writer(), "default logger must be silenced before dependencies initialize")

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hello\n"})

	res := runCLI(t, "dir-prompt", dir)
	require.NoError(t, res.err)
	assert.Equal(t, "a.txt\n\nhello\n\n", res.stdout)
	assert.Empty(t, res.stderr)

	res = runCLI(t, "tokenize-dir", dir, "--quiet")
	require.NoError(t, res.err)
	assert.Empty(t, res.stderr)
}

func TestConfigDirectoryIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, configFileName), 0o755))
	writeFiles(t, dir, map[string]string{"a.txt": "x"})

	res := runCLI(t, "dir-prompt", dir)
	require.NoError(t, res.err)
	assert.Equal(t, "a.txt\n\nx\n", res.stdout)
}
