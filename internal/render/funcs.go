package render

import (
	"bytes"
	"fmt"
	"path"
	"reflect"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const orEmptyFunc = "orEmpty"

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// funcMap returns the helpers available to the page template.
func funcMap() template.FuncMap {
	titler := cases.Title(language.Und)
	return template.FuncMap{
		orEmptyFunc: orEmpty,
		"markdown":  renderMarkdown,
		"title": func(v any) string {
			return titler.String(toString(v))
		},
		"asset": func(parts ...string) string {
			return path.Join(parts...)
		},
		"default": defaultValue,
		"join": func(sep string, items []any) string {
			out := make([]string, 0, len(items))
			for _, it := range items {
				if s, ok := it.(string); ok {
					out = append(out, s)
				}
			}
			return strings.Join(out, sep)
		},
	}
}

// renderMarkdown converts metadata markdown to HTML.
func renderMarkdown(v any) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(toString(v)), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// orEmpty turns a missing value into the empty string.
func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}

// defaultValue returns def when v is nil or the zero value of its type.
func defaultValue(def, v any) any {
	if v == nil {
		return def
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		if rv.Len() == 0 {
			return def
		}
	default:
		if rv.IsZero() {
			return def
		}
	}
	return v
}
