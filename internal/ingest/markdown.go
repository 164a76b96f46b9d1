package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownLoader loads one unit per heading section.
// Each unit carries its heading path, e.g. "# Report > ## Section 2".
type MarkdownLoader struct {
	parser goldmark.Markdown
}

// NewMarkdownLoader creates a MarkdownLoader with table support.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

type section struct {
	headingPath string
	text        strings.Builder
}

func (l *MarkdownLoader) Load(_ context.Context, path string) ([]Unit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown document: %w", err)
	}

	title, sections := l.parse(content, path)

	units := make([]Unit, 0, len(sections))
	for _, s := range sections {
		body := strings.TrimSpace(s.text.String())
		if body == "" {
			continue
		}
		units = append(units, Unit{
			Text: body,
			Metadata: map[string]any{
				MetaSource:      path,
				MetaTitle:       title,
				MetaHeadingPath: s.headingPath,
			},
		})
	}
	return units, nil
}

func (l *MarkdownLoader) parse(content []byte, filename string) (string, []*section) {
	if len(content) == 0 {
		return titleFromFilename(filename), nil
	}

	doc := l.parser.Parser().Parse(text.NewReader(content))
	title := extractTitle(doc, content, filename)

	var sections []*section
	var current *section
	var stack []headingInfo

	newline := func() {
		if current != nil && current.text.Len() > 0 && !strings.HasSuffix(current.text.String(), "\n") {
			current.text.WriteString("\n")
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingInfo{level: node.Level, text: extractTextFromNode(node, content)})
			current = &section{headingPath: buildHeadingPath(stack)}
			sections = append(sections, current)
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if current == nil {
				// Content before the first heading belongs to the document title
				current = &section{headingPath: "# " + title}
				sections = append(sections, current)
			}
			current.text.Write(node.Segment.Value(content))
			if node.SoftLineBreak() || node.HardLineBreak() {
				current.text.WriteString("\n")
			}
			return ast.WalkContinue, nil

		case *ast.String:
			if current != nil {
				current.text.Write(node.Value)
			}
			return ast.WalkContinue, nil

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if current == nil {
				current = &section{headingPath: "# " + title}
				sections = append(sections, current)
			}
			newline()
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				current.text.Write(line.Value(content))
			}
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			newline()
			// Blank line between sibling paragraphs keeps them splittable
			if current != nil && n.PreviousSibling() != nil {
				current.text.WriteString("\n")
			}
			return ast.WalkContinue, nil

		case *ast.List, *ast.ListItem:
			newline()
			return ast.WalkContinue, nil
		}

		kindName := n.Kind().String()
		switch {
		case strings.Contains(kindName, "TableRow"), strings.Contains(kindName, "TableHeader"):
			if current == nil {
				return ast.WalkSkipChildren, nil
			}
			newline()
			current.text.WriteString(extractTableRowText(n, content))
			current.text.WriteString("\n")
			return ast.WalkSkipChildren, nil
		case strings.Contains(kindName, "Table"):
			newline()
		}
		return ast.WalkContinue, nil
	})

	return title, sections
}

// extractTitle returns the first level 1 heading, else the first level 2, else the filename.
func extractTitle(doc ast.Node, content []byte, filename string) string {
	var firstH1, firstH2 string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			headingText := extractTextFromNode(heading, content)
			if heading.Level == 1 && firstH1 == "" {
				firstH1 = headingText
				return ast.WalkStop, nil
			}
			if heading.Level == 2 && firstH2 == "" {
				firstH2 = headingText
			}
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return titleFromFilename(filename)
}

// titleFromFilename strips the extension and capitalizes each word.
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

type headingInfo struct {
	level int
	text  string
}

// buildHeadingPath renders the stack as "# Heading1 > ## Heading2".
func buildHeadingPath(stack []headingInfo) string {
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = fmt.Sprintf("%s %s", strings.Repeat("#", h.level), h.text)
	}
	return strings.Join(parts, " > ")
}

func extractTextFromNode(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// extractTableRowText joins cell texts with pipe separators.
func extractTableRowText(row ast.Node, content []byte) string {
	var cells []string
	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(node.Kind().String(), "TableCell") {
			cells = append(cells, extractTextFromNode(node, content))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(cells, " | ")
}
