package fetcher

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractLinks returns the href targets of all anchors in the document.
// Targets are returned raw; the caller normalizes and resolves them against
// the page's resolved URL.
func ExtractLinks(doc string) []string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}
	var links []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					links = append(links, attr.Val)
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return links
}
