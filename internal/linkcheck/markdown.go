package linkcheck

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// ExtractMarkdownLinks parses a markdown source page (MyST pages feed the
// generator alongside reStructuredText) and returns its link destinations.
func ExtractMarkdownLinks(source []byte) []Link {
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(source))

	var links []Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			dest := string(v.Destination)
			links = append(links, Link{URL: dest, Tag: "a", Attribute: "href", IsInternal: isInternal(dest)})
		case *ast.Image:
			dest := string(v.Destination)
			links = append(links, Link{URL: dest, Tag: "img", Attribute: "src", IsInternal: isInternal(dest)})
		case *ast.AutoLink:
			dest := string(v.URL(source))
			links = append(links, Link{URL: dest, Tag: "a", Attribute: "href", IsInternal: isInternal(dest)})
		}
		return ast.WalkContinue, nil
	})
	return links
}
