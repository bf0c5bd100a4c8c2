package schedule

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"outagemonitor/internal/models"
)

// ErrNoArticle is returned when no article on the page carries queue data.
var ErrNoArticle = errors.New("no article with queue data found")

var queueMarkerRe = regexp.MustCompile(`\d\.\d`)

const contentClass = "content"

// SelectArticle returns the first article whose content contains a queue marker.
func SelectArticle(raw string) (models.Article, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return models.Article{}, fmt.Errorf("parse markup: %w", err)
	}

	for node := range articles(doc) {
		article := models.Article{
			Title:       strings.TrimSpace(collectText(node, isHeading)),
			ContentText: strings.TrimSpace(collectText(node, hasContentClass)),
		}
		if queueMarkerRe.MatchString(article.ContentText) {
			return article, nil
		}
	}
	return models.Article{}, ErrNoArticle
}

// Parse selects the schedule article from raw markup and extracts its queues.
func Parse(raw string) (models.Outage, error) {
	article, err := SelectArticle(raw)
	if err != nil {
		return models.Outage{}, err
	}
	return models.Outage{
		Article: article,
		Queues:  ExtractSchedule(article.ContentText),
	}, nil
}

// articles yields <article> elements in document order.
func articles(doc *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		for node := range descendants(doc) {
			if node.Type == html.ElementNode && node.DataAtom == atom.Article {
				if !yield(node) {
					return
				}
			}
		}
	}
}

// descendants walks the subtree below n depth-first in document order.
func descendants(n *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		var walk func(*html.Node) bool
		walk = func(parent *html.Node) bool {
			for child := parent.FirstChild; child != nil; child = child.NextSibling {
				if !yield(child) || !walk(child) {
					return false
				}
			}
			return true
		}
		walk(n)
	}
}

// collectText concatenates the text of every descendant of root matching match.
func collectText(root *html.Node, match func(*html.Node) bool) string {
	var sb strings.Builder
	for node := range descendants(root) {
		if node.Type == html.ElementNode && match(node) {
			writeText(&sb, node)
		}
	}
	return sb.String()
}

func writeText(sb *strings.Builder, n *html.Node) {
	for node := range descendants(n) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
	}
}

func isHeading(n *html.Node) bool {
	return n.DataAtom == atom.H2
}

func hasContentClass(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == "class" {
			for _, class := range strings.Fields(attr.Val) {
				if class == contentClass {
					return true
				}
			}
		}
	}
	return false
}
