// Package render binds site metadata into the page template, minifies the
// result and writes it to the output tree.
package render

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"text/template"
	"text/template/parse"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

var (
	headSection = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	interTagGap = regexp.MustCompile(`>\s+<`)
)

// Renderer renders and minifies the page template.
type Renderer struct {
	minifier *minify.M
}

// NewRenderer creates a Renderer with HTML, CSS and JS minifiers registered.
func NewRenderer() *Renderer {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
		KeepDefaultAttrVals: true,
	})
	m.AddFunc("text/css", css.Minify)
	m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
	return &Renderer{minifier: m}
}

// RenderFile parses the template at path and executes it with data.
func (r *Renderer) RenderFile(path string, data any) (string, error) {
	src, err := os.ReadFile(filepath.Clean(path))
	if os.IsNotExist(err) {
		return "", ferrors.NotFoundError("template file not found").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if err != nil {
		return "", ferrors.FileSystemError("failed to read template file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return r.Render(filepath.Base(path), string(src), data)
}

// Render executes the template text with data. Values are written verbatim,
// without HTML escaping. Missing keys render empty.
func (r *Renderer) Render(name, text string, data any) (string, error) {
	tpl, err := template.New(name).Funcs(funcMap()).Parse(text)
	if err != nil {
		return "", ferrors.TemplateError("failed to parse template").
			WithCause(err).
			WithContext("template", name).
			Build()
	}
	for _, t := range tpl.Templates() {
		if t.Tree != nil {
			blankMissing(t.Tree, t.Tree.Root)
		}
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", ferrors.TemplateError("failed to render template").
			WithCause(err).
			WithContext("template", name).
			Build()
	}
	return buf.String(), nil
}

// blankMissing appends the orEmpty filter to every printing action so a
// missing key prints nothing instead of "<no value>".
func blankMissing(tree *parse.Tree, node parse.Node) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			blankMissing(tree, c)
		}
	case *parse.ActionNode:
		if len(n.Pipe.Decl) > 0 {
			return
		}
		ident := parse.NewIdentifier(orEmptyFunc).SetTree(tree).SetPos(n.Pos)
		n.Pipe.Cmds = append(n.Pipe.Cmds, &parse.CommandNode{
			NodeType: parse.NodeCommand,
			Pos:      n.Pos,
			Args:     []parse.Node{ident},
		})
	case *parse.IfNode:
		blankMissing(tree, n.List)
		blankMissing(tree, n.ElseList)
	case *parse.RangeNode:
		blankMissing(tree, n.List)
		blankMissing(tree, n.ElseList)
	case *parse.WithNode:
		blankMissing(tree, n.List)
		blankMissing(tree, n.ElseList)
	}
}

// Minify collapses whitespace and drops comments from an HTML document.
// Whitespace between tags inside <head> is removed entirely.
func (r *Renderer) Minify(doc string) (string, error) {
	out, err := r.minifier.String("text/html", doc)
	if err != nil {
		return "", ferrors.TemplateError("failed to minify HTML").
			WithCause(err).
			Build()
	}
	return headSection.ReplaceAllStringFunc(out, func(head string) string {
		return interTagGap.ReplaceAllString(head, "><")
	}), nil
}

// WriteOutput writes content to path, replacing any existing file.
func WriteOutput(path, content string) error {
	if err := os.WriteFile(filepath.Clean(path), []byte(content), 0o644); err != nil { // #nosec G306 -- published site content
		return ferrors.FileSystemError("failed to write output file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
