package flow

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const maxTitleLen = 200

// TitleFromMarkdown derives an artifact title from specialist output: the
// text of the first markdown heading, or the first non-empty line when the
// output carries no heading. The result is truncated to the store's title
// column width.
func TitleFromMarkdown(src string) string {
	source := []byte(src)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			title = string(h.Text(source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	title = strings.TrimSpace(title)
	if title == "" {
		title = firstLine(src)
	}
	return truncate(title, maxTitleLen)
}

func firstLine(src string) string {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
