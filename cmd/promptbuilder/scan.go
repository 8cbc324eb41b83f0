package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// unreadablePlaceholder stands in for the contents of a file that cannot be
// read as text.
const unreadablePlaceholder = "[Could not read contents]"

// readDirBatch is how many entries are requested from the directory per call.
const readDirBatch = 64

var (
	errNotDirectory = errors.New("not a directory")
	errInvalidUTF8  = errors.New("contents are not valid UTF-8")
)

// FileEntry is a regular file found directly inside the scanned directory
type FileEntry struct {
	Name string
	Path string
}

// recordRenderer turns a file's filtered contents into one output record.
type recordRenderer interface {
	Render(name string, filtered string) (string, error)
}

// recordWriter receives rendered records in enumeration order.
type recordWriter interface {
	WriteRecord(record string) error
}

func validateDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is %w", dir, errNotDirectory)
	}
	return nil
}

// walkEntries calls fn for every regular file directly inside dir, in the
// order the directory yields them. Symlinks are followed; dangling links and
// anything that is not a regular file are skipped. A listing error, or an
// error returned by fn, stops the walk.
func walkEntries(dir string, fn func(FileEntry) error) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	defer d.Close()

	for {
		entries, err := d.ReadDir(readDirBatch)
		for _, item := range entries {
			path := filepath.Join(dir, item.Name())
			mode := item.Type()
			if mode&fs.ModeSymlink != 0 {
				info, statErr := os.Stat(path)
				if statErr != nil {
					continue
				}
				mode = info.Mode()
			}
			if !mode.IsRegular() {
				continue
			}
			if fnErr := fn(FileEntry{Name: item.Name(), Path: path}); fnErr != nil {
				return fnErr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
	}
}

// loadContents returns the text of the file at path. Unreadable or non-UTF-8
// files are reported and yield unreadablePlaceholder.
func loadContents(path string, rep *reporter) string {
	content, err := os.ReadFile(path)
	if err == nil && !utf8.Valid(content) {
		err = errInvalidUTF8
	}
	if err != nil {
		rep.Warnf("Could not read file %s: %v", path, err)
		return unreadablePlaceholder
	}
	return string(content)
}

// filterLines drops every line containing any of substrings and joins the
// rest with "\n". With no substrings the text is returned untouched.
func filterLines(text string, substrings []string) string {
	if len(substrings) == 0 {
		return text
	}

	kept := make([]string, 0)
	for _, line := range splitLines(text) {
		if !containsAny(line, substrings) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// splitLines splits on "\n", dropping one trailing "\r" per line. A final
// newline does not start another line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func containsAny(line string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

// scanDirectory runs every regular file in dir through the filter, loader
// and renderer, writing one record per surviving file.
func scanDirectory(dir string, filter *Filter, skip []string, render recordRenderer, out recordWriter, rep *reporter) error {
	return walkEntries(dir, func(entry FileEntry) error {
		if filter.ShouldSkip(entry.Name) {
			rep.Infof("Skipping ignored file: %s", entry.Name)
			return nil
		}

		contents := filterLines(loadContents(entry.Path, rep), skip)

		record, err := render.Render(entry.Name, contents)
		if err != nil {
			return err
		}
		return out.WriteRecord(record)
	})
}
