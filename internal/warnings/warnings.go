// Package warnings reads the generator's warnings log. The log is a build
// output: truncated before each run, consumed by the strict gate afterwards.
package warnings

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is a single diagnostic line from the warnings log.
type Entry struct {
	Location string // "docname:line" when the generator provided one
	Severity string // WARNING or ERROR
	Message  string
}

// Reset truncates the warnings log so the coming build starts clean.
// Missing parent directories are created; a missing log is not an error.
func Reset(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create warnings log directory: %w", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("truncate warnings log: %w", err)
	}
	return nil
}

// Parse reads the warnings log and returns its diagnostic entries.
// A missing log is treated as empty: the generator emits the file lazily.
func Parse(path string) ([]Entry, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open warnings log: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, parseLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read warnings log: %w", err)
	}
	return entries, nil
}

// Count returns the number of diagnostics in the log.
func Count(path string) (int, error) {
	entries, err := Parse(path)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Empty reports whether the log holds no diagnostics. The strict build gate
// passes only when this is true.
func Empty(path string) (bool, error) {
	n, err := Count(path)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// parseLine splits a diagnostic of the form "docname:line: SEVERITY: message".
// Lines that do not match are kept verbatim as message-only warnings.
func parseLine(line string) Entry {
	for _, sev := range []string{"WARNING", "ERROR"} {
		marker := sev + ": "
		if idx := strings.Index(line, marker); idx >= 0 {
			return Entry{
				Location: strings.TrimSuffix(strings.TrimSpace(line[:idx]), ":"),
				Severity: sev,
				Message:  strings.TrimSpace(line[idx+len(marker):]),
			}
		}
	}
	return Entry{Severity: "WARNING", Message: line}
}
