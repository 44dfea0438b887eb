package pdf

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// extractMarkdownText renders markdown to plain text, one line per block
func extractMarkdownText(source []byte) string {
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	doc := md.Parser().Parse(text.NewReader(source))

	var out strings.Builder
	writeLines := func(n ast.Node) {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			out.Write(seg.Value(source))
		}
		out.WriteByte('\n')
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				out.Write(node.Segment.Value(source))
				switch {
				case node.HardLineBreak():
					out.WriteByte('\n')
				case node.SoftLineBreak():
					out.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				out.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				out.Write(node.Label(source))
			}
		case *ast.CodeBlock:
			if entering {
				writeLines(node)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if entering {
				writeLines(node)
			}
			return ast.WalkSkipChildren, nil
		case *extast.TableCell:
			if !entering {
				out.WriteByte(' ')
			}
		default:
			if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				out.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return out.String()
}
