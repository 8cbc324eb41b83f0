package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

type clipboardCommand struct {
	name string
	args []string
}

// unixClipboardCommands are tried in order on platforms other than macOS
// and Windows.
var unixClipboardCommands = []clipboardCommand{
	{name: "wl-copy"},
	{name: "xclip", args: []string{"-selection", "clipboard"}},
	{name: "xsel", args: []string{"--clipboard", "--input"}},
	{name: "clip.exe"},
}

// deliverToClipboard is swapped out in tests.
var deliverToClipboard = copyToClipboard

func runClipboardCommand(name string, args []string, data string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(data)
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s failed: %s", name, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func copyToClipboard(data string) error {
	switch runtime.GOOS {
	case "darwin":
		return runRequiredClipboardCommand("pbcopy", data)
	case "windows":
		return runRequiredClipboardCommand("clip", data)
	}

	tried := make([]string, 0, len(unixClipboardCommands))
	for _, c := range unixClipboardCommands {
		if path, _ := exec.LookPath(c.name); path != "" {
			return runClipboardCommand(path, c.args, data)
		}
		tried = append(tried, c.name)
	}
	return fmt.Errorf("no clipboard utility found (tried %s)", strings.Join(tried, ", "))
}

func runRequiredClipboardCommand(name string, data string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	return runClipboardCommand(name, nil, data)
}

// osc52Sequence wraps data in an OSC 52 clipboard escape, with the
// passthrough envelope tmux and screen need.
func osc52Sequence(data string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(data))
	seq := fmt.Sprintf("\x1b]52;c;%s\x07", encoded)
	if os.Getenv("TMUX") != "" {
		return "\x1bPtmux;" + seq + "\x1b\\"
	}
	if strings.HasPrefix(os.Getenv("TERM"), "screen") {
		return "\x1bP" + seq + "\x1b\\"
	}
	return seq
}

func copyToOSC52(w io.Writer, data string) error {
	if _, err := io.WriteString(w, osc52Sequence(data)); err != nil {
		return fmt.Errorf("failed to write OSC 52 sequence: %w", err)
	}
	return nil
}
