package timeline

import (
	"strings"

	"github.com/rtCamp/next-crm/internal/domain/models"
	"github.com/rtCamp/next-crm/pkg/constants"
	"golang.org/x/net/html"
)

// ParseAttachmentLog reads the HTML content of an attachment comment
func ParseAttachmentLog(content, commentType string) models.AttachmentLogData {
	logType := constants.ActivityRemoved
	if commentType == constants.CommentTypeAttachment {
		logType = constants.ActivityAdded
	}

	anchor := findAnchor(content)
	if anchor == nil {
		return models.AttachmentLogData{
			Type:     logType,
			FileName: strings.ReplaceAll(content, "Removed ", ""),
		}
	}

	href := attr(anchor, "href")
	return models.AttachmentLogData{
		Type:      logType,
		FileName:  textOf(anchor),
		FileURL:   href,
		IsPrivate: strings.Contains(href, "private/files"),
	}
}

func findAnchor(content string) *html.Node {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var walk func(*html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "a" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(doc)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
