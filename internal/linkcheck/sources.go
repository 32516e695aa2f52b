package linkcheck

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ScanSources verifies internal link destinations in markdown source pages
// (MyST pages feed the generator alongside reStructuredText). Destinations are
// resolved on disk relative to the page. Fragment-only references are skipped
// here: section anchors only exist after the build and are verified against
// the HTML tree by ScanTree. Exclude prefixes keep the artifact tree out.
func ScanSources(root string, exclude ...string) ([]Problem, error) {
	absExclude := make([]string, 0, len(exclude))
	for _, e := range exclude {
		absExclude = append(absExclude, filepath.Clean(e))
	}

	var problems []Problem
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if excludedPath(path, absExclude) || (strings.HasPrefix(info.Name(), ".") && path != root) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") {
			return nil
		}
		pageProblems, err := scanSourcePage(root, path)
		if err != nil {
			return err
		}
		problems = append(problems, pageProblems...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan markdown sources: %w", err)
	}
	return problems, nil
}

func scanSourcePage(root, path string) ([]Problem, error) {
	source, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	var problems []Problem
	for _, link := range ExtractMarkdownLinks(source) {
		if !link.IsInternal {
			continue
		}
		u, err := url.Parse(link.URL)
		if err != nil {
			problems = append(problems, Problem{Page: rel, URL: link.URL, Reason: "unparsable"})
			continue
		}
		if u.Path == "" {
			continue
		}
		target := filepath.Join(filepath.Dir(path), filepath.FromSlash(u.Path))
		if _, err := os.Stat(target); err != nil {
			problems = append(problems, Problem{Page: rel, URL: link.URL, Reason: "missing file"})
		}
	}
	return problems, nil
}

func excludedPath(path string, exclude []string) bool {
	clean := filepath.Clean(path)
	for _, e := range exclude {
		if clean == e || strings.HasPrefix(clean, e+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
