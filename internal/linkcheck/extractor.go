package linkcheck

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Link is a reference extracted from a built HTML page.
type Link struct {
	URL        string
	Tag        string // a, img, script, link
	Attribute  string // href or src
	IsInternal bool
}

// ExtractLinks extracts all links from an HTML file.
func ExtractLinks(htmlPath string) ([]Link, error) {
	f, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return ExtractLinksFromReader(f)
}

// ExtractLinksFromReader extracts all links from an HTML document.
func ExtractLinksFromReader(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href := getAttr(n, "href"); href != "" {
					links = append(links, Link{URL: href, Tag: n.Data, Attribute: "href", IsInternal: isInternal(href)})
				}
			case "img", "script":
				if src := getAttr(n, "src"); src != "" {
					links = append(links, Link{URL: src, Tag: n.Data, Attribute: "src", IsInternal: isInternal(src)})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// Anchors collects the id attributes of an HTML document, the targets internal
// fragment references resolve against.
func Anchors(r io.Reader) (map[string]bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := getAttr(n, "id"); id != "" {
				ids[normalizeAnchor(id)] = true
			}
			if n.Data == "a" {
				if name := getAttr(n, "name"); name != "" {
					ids[normalizeAnchor(name)] = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return ids, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// isInternal reports whether a URL stays inside the built site.
func isInternal(link string) bool {
	if strings.HasPrefix(link, "#") {
		return true
	}
	if strings.HasPrefix(link, "mailto:") || strings.HasPrefix(link, "tel:") ||
		strings.HasPrefix(link, "javascript:") || strings.HasPrefix(link, "data:") {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
