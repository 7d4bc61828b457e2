// Package content renders node content: Markdown with TeX math delimited by
// $$...$$ (display) and $...$ (inline).
package content

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"graphlearn/internal/observability"
	pkgerrors "graphlearn/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"
)

// CSS classes carried by rendered math spans.
const (
	ClassMathInline  = "math math-inline"
	ClassMathDisplay = "math math-display"
	ClassMathError   = "math math-error"
)

// Renderer converts node content to HTML.
type Renderer struct {
	md      goldmark.Markdown
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewRenderer creates a renderer. Raw HTML in the source is escaped.
func NewRenderer(logger *zap.Logger, metrics *observability.Collector) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		metrics: metrics,
		logger:  logger,
	}
}

// Render converts text to HTML. Any failure, including a panic inside the
// Markdown converter, is returned as a RENDER error.
func (r *Renderer) Render(text string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = pkgerrors.NewRenderError(fmt.Errorf("%v", rec))
			out = ""
		}
		if err != nil {
			r.metrics.RecordRenderFailure()
			r.logger.Warn("Failed to render content", zap.Error(err))
		}
	}()

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", pkgerrors.NewRenderError(err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", pkgerrors.NewRenderError(err)
	}
	body := doc.Find("body")
	for _, n := range body.Nodes {
		typesetMath(n)
	}

	rendered, err := body.Html()
	if err != nil {
		return "", pkgerrors.NewRenderError(err)
	}
	return strings.TrimSpace(rendered), nil
}

// RenderSafe renders text, replacing any failure with an inline error block.
func (r *Renderer) RenderSafe(text string) string {
	out, err := r.Render(text)
	if err != nil {
		msg := err.Error()
		if appErr := pkgerrors.GetAppError(err); appErr != nil && appErr.Cause != nil {
			msg = appErr.Cause.Error()
		}
		return `<div class="alert alert-danger">Rendering error: ` + html.EscapeString(msg) + `</div>`
	}
	return out
}

// typesetMath replaces math in text nodes below n with math spans. Code
// blocks are left untouched.
func typesetMath(n *xhtml.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case xhtml.ElementNode:
			if c.Data != "code" && c.Data != "pre" {
				typesetMath(c)
			}
		case xhtml.TextNode:
			replaceText(c)
		}
		c = next
	}
}

func replaceText(node *xhtml.Node) {
	segments := SplitMath(node.Data)
	if len(segments) == 1 && !segments[0].Math {
		return
	}

	parent := node.Parent
	for _, seg := range segments {
		if !seg.Math {
			parent.InsertBefore(&xhtml.Node{Type: xhtml.TextNode, Data: seg.Text}, node)
			continue
		}
		class := ClassMathInline
		if seg.Display {
			class = ClassMathDisplay
		}
		if !balanced(seg.Text) {
			class = ClassMathError
		}
		span := &xhtml.Node{
			Type: xhtml.ElementNode,
			Data: "span",
			Attr: []xhtml.Attribute{{Key: "class", Val: class}},
		}
		span.AppendChild(&xhtml.Node{Type: xhtml.TextNode, Data: seg.Text})
		parent.InsertBefore(span, node)
	}
	parent.RemoveChild(node)
}

// balanced reports whether braces in a TeX fragment are balanced.
func balanced(tex string) bool {
	depth := 0
	for i := 0; i < len(tex); i++ {
		switch tex[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
