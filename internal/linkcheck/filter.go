// Package linkcheck filters the generator's link checker output down to
// actionable failures and, in strict mode, verifies internal cross references
// against the built HTML tree.
package linkcheck

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// LogEntry is one line of the link checker's output log.
type LogEntry struct {
	Source string // document the link appears in
	Line   int    // 0 when the checker did not report one
	Status string // ok, local, broken, redirected, ignored, unchecked, timeout
	URI    string
	Detail string // error message or redirect target
}

// logLine matches "docname:lineno: [status] uri..." with an optional lineno.
var logLine = regexp.MustCompile(`^(.*?):(?:(\d+):)?\s*\[([^\]]+)\]\s*(.*)$`)

// ParseLogLine parses a single link checker output line. The second return is
// false for lines that are not link results (progress output, blanks).
func ParseLogLine(line string) (LogEntry, bool) {
	m := logLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return LogEntry{}, false
	}
	entry := LogEntry{Source: m[1], Status: strings.Fields(m[3])[0]}
	if m[2] != "" {
		entry.Line, _ = strconv.Atoi(m[2])
	}
	rest := m[4]
	if idx := strings.Index(rest, ": "); idx >= 0 {
		entry.URI = rest[:idx]
		entry.Detail = rest[idx+2:]
	} else if idx := strings.Index(rest, " -> "); idx >= 0 {
		entry.URI = rest[:idx]
		entry.Detail = rest[idx+4:]
	} else {
		entry.URI = rest
	}
	return entry, true
}

// Filter classifies log entries against the configured exemptions.
type Filter struct {
	ignore []*regexp.Regexp
}

// NewFilter compiles the exempt URL patterns.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid linkcheck ignore pattern %q: %w", p, err)
		}
		f.ignore = append(f.ignore, re)
	}
	return f, nil
}

// Exempt reports whether a URI matches one of the ignore patterns.
func (f *Filter) Exempt(uri string) bool {
	for _, re := range f.ignore {
		if re.MatchString(uri) {
			return true
		}
	}
	return false
}

// Actionable reports whether an entry should fail the linkcheck target.
// Entries tagged local pass; broken (and timed-out) entries fail unless the
// URI is exempt; everything else is generator noise.
func (f *Filter) Actionable(entry LogEntry) bool {
	switch entry.Status {
	case "broken", "timeout":
		return !f.Exempt(entry.URI)
	default:
		return false
	}
}

// FilterLog scans a link checker output log and returns the actionable
// failures. An empty result means the target passes.
func (f *Filter) FilterLog(r io.Reader) ([]LogEntry, error) {
	var failures []LogEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		entry, ok := ParseLogLine(scanner.Text())
		if !ok {
			continue
		}
		if f.Actionable(entry) {
			failures = append(failures, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read linkcheck log: %w", err)
	}
	return failures, nil
}
