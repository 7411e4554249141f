// Package casebook reads compiler test cases out of Markdown documents.
//
// A case starts at a heading "Test: <name>" and is made of fenced code
// blocks: a "c0" fence with the program, and either a "listing" fence with
// the expected text listing or an "error" fence with the expected error line.
// Fences without a language are prose and ignored.
package casebook

import (
	"bytes"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence languages.
const (
	FenceSource  = "c0"
	FenceListing = "listing"
	FenceError   = "error"
)

// Case is one compiler test case.
type Case struct {
	Name    string
	Line    int // line of the heading, 1-based
	Source  string
	Listing string
	Error   string
}

// Load reads the cases of a Markdown file.
func Load(path string) ([]Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cases, err := Extract(content)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cases, nil
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(source []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &Case{
				Name: strings.TrimPrefix(heading, "Test: "),
				Line: lineOf(n, source),
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			if language == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, source)
			if current == nil {
				return ast.WalkStop, errors.Errorf("line %d: %s fence outside of a test case", line, language)
			}

			content := fenceContent(n, source)
			var field *string
			switch language {
			case FenceSource:
				field = &current.Source
			case FenceListing:
				field = &current.Listing
			case FenceError:
				field = &current.Error
				content = strings.TrimRight(content, "\n")
			default:
				return ast.WalkStop, errors.Errorf("line %d: unknown fence language %q in test %q", line, language, current.Name)
			}
			if *field != "" {
				return ast.WalkStop, errors.Errorf("line %d: multiple %s fences in test %q", line, language, current.Name)
			}
			*field = content
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

// validate checks that a case has a program and exactly one expectation.
func validate(c *Case) error {
	if c.Source == "" {
		return errors.Errorf("test %q has no %s fence", c.Name, FenceSource)
	}
	if (c.Listing == "") == (c.Error == "") {
		return errors.Errorf("test %q needs exactly one of the %s and %s fences", c.Name, FenceListing, FenceError)
	}
	return nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line a block node starts on.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
