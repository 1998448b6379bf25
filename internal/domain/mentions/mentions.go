// Package mentions finds the users tagged in rich-text note content.
package mentions

import (
	"strings"

	"golang.org/x/net/html"
)

const mentionClass = "mention"

// Extract returns the user ids carried by data-id on elements with the
// mention class, in order of first appearance.
func Extract(content string) []string {
	ids := make([]string, 0)
	if strings.TrimSpace(content) == "" {
		return ids
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ids
	}

	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, mentionClass) {
			if id := strings.TrimSpace(attr(n, "data-id")); id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return ids
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
