package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Sink is the single destination for rendered records. In print mode records
// go straight to a file or stdout; in the copy modes they are collected and
// handed over by Finish.
type Sink struct {
	mode   string
	w      io.Writer
	file   *os.File
	buf    *bytes.Buffer
	stdout io.Writer
}

// openSink opens the destination for mode. path is only valid in print mode;
// an empty path means stdout.
func openSink(mode string, path string, stdout io.Writer) (*Sink, error) {
	s := &Sink{mode: mode, stdout: stdout}

	switch mode {
	case outputModeCopy, outputModeSSHCopy:
		if path != "" {
			return nil, fmt.Errorf("--output cannot be combined with %s mode", mode)
		}
		s.buf = &bytes.Buffer{}
		s.w = s.buf
	case outputModePrint:
		if path == "" {
			s.w = stdout
			break
		}
		file, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file '%s': %w", path, err)
		}
		s.file = file
		s.w = file
	default:
		return nil, fmt.Errorf("unknown output mode %q", mode)
	}

	return s, nil
}

// WriteRecord appends one record with a single write.
func (s *Sink) WriteRecord(record string) error {
	if _, err := io.WriteString(s.w, record); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Finish completes delivery: closes the output file, or copies the collected
// records to the clipboard.
func (s *Sink) Finish() error {
	switch s.mode {
	case outputModeCopy:
		if err := deliverToClipboard(s.buf.String()); err != nil {
			return fmt.Errorf("failed to copy output to clipboard: %w", err)
		}
	case outputModeSSHCopy:
		return copyToOSC52(s.stdout, s.buf.String())
	}
	return s.Close()
}

// Close releases the output file, if any. It is safe to call more than once.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
