package linkcheck

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Problem is an internal cross reference that does not resolve inside the
// built HTML tree.
type Problem struct {
	Page   string // page containing the reference, relative to the tree root
	URL    string
	Reason string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s (%s)", p.Page, p.URL, p.Reason)
}

// ScanTree verifies every internal link in the built HTML tree. It indexes all
// pages and their anchors first, then resolves each reference against the
// index. Used by the strict linkcheck path on top of the generator's checker.
func ScanTree(root string) ([]Problem, error) {
	pages, anchors, err := indexTree(root)
	if err != nil {
		return nil, err
	}

	var problems []Problem
	for _, page := range sortedKeys(pages) {
		links, err := ExtractLinks(filepath.Join(root, page))
		if err != nil {
			return nil, fmt.Errorf("extract links from %s: %w", page, err)
		}
		for _, link := range links {
			if !link.IsInternal {
				continue
			}
			if p, bad := resolve(root, page, link.URL, pages, anchors); bad {
				problems = append(problems, p)
			}
		}
	}
	return problems, nil
}

// indexTree walks the tree collecting page paths and per-page anchor sets.
func indexTree(root string) (map[string]bool, map[string]map[string]bool, error) {
	pages := make(map[string]bool)
	anchors := make(map[string]map[string]bool)

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pages[rel] = true

		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return err
		}
		ids, err := Anchors(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", rel, err)
		}
		anchors[rel] = ids
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("index artifact tree: %w", err)
	}
	return pages, anchors, nil
}

// resolve checks one internal reference from page. Returns the problem and
// true when the reference is broken.
func resolve(root, page, raw string, pages map[string]bool, anchors map[string]map[string]bool) (Problem, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return Problem{Page: page, URL: raw, Reason: "unparsable"}, true
	}

	target := page
	if u.Path != "" {
		joined := filepath.ToSlash(filepath.Join(filepath.Dir(page), u.Path))
		if strings.HasSuffix(u.Path, "/") {
			joined += "/index.html"
		}
		target = joined
	}

	if strings.HasSuffix(target, ".html") {
		if !pages[target] {
			return Problem{Page: page, URL: raw, Reason: "missing page"}, true
		}
	} else if u.Path != "" {
		// Static asset: existence on disk is enough.
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(target))); err != nil {
			return Problem{Page: page, URL: raw, Reason: "missing file"}, true
		}
		return Problem{}, false
	}

	if u.Fragment != "" {
		ids := anchors[target]
		if ids == nil || !ids[normalizeAnchor(u.Fragment)] {
			return Problem{Page: page, URL: raw, Reason: "missing anchor"}, true
		}
	}
	return Problem{}, false
}

// normalizeAnchor NFC-normalizes a fragment so references to non-ASCII section
// titles compare the same way the generator writes them.
func normalizeAnchor(s string) string {
	return norm.NFC.String(s)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
