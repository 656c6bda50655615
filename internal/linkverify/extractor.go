package linkverify

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Link represents a reference found in rendered HTML.
type Link struct {
	URL       string // The URL or path as written
	Tag       string // HTML tag (a, img, script, link, etc.)
	Attribute string // Attribute containing the link (href, src, srcset)
	IsLocal   bool   // True if the reference resolves inside the output tree
	Line      int    // Element ordinal, used as an approximate position
}

// linkAttrs maps element names to the attributes carrying references.
var linkAttrs = map[string][]string{
	"a":      {"href"},
	"img":    {"src", "srcset"},
	"script": {"src"},
	"link":   {"href"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"source": {"src", "srcset"},
	"iframe": {"src"},
	"embed":  {"src"},
	"object": {"data"},
}

// ExtractLinks extracts all references from an HTML file.
func ExtractLinks(htmlPath string) ([]*Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.FileSystemError("failed to open HTML file").
			WithCause(err).
			WithSeverity(errors.SeverityError).
			WithContext("html_path", htmlPath).
			Build()
	}
	defer func() {
		_ = file.Close()
	}()

	return ExtractLinksFromReader(file)
}

// ExtractLinksFromReader extracts all references from an HTML reader.
func ExtractLinksFromReader(r io.Reader) ([]*Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").
			WithSeverity(errors.SeverityError).
			Build()
	}

	var links []*Link
	var lineNum int

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			lineNum++
			links = append(links, extractElementLinks(n, lineNum)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}

	extract(doc)
	return links, nil
}

func extractElementLinks(n *html.Node, lineNum int) []*Link {
	attrs, ok := linkAttrs[n.Data]
	if !ok {
		return nil
	}

	var out []*Link
	for _, key := range attrs {
		val := strings.TrimSpace(getAttr(n, key))
		if val == "" {
			continue
		}
		candidates := []string{val}
		if key == "srcset" {
			candidates = parseSrcset(val)
		}
		for _, c := range candidates {
			out = append(out, &Link{
				URL:       c,
				Tag:       n.Data,
				Attribute: key,
				IsLocal:   isLocalLink(c),
				Line:      lineNum,
			})
		}
	}
	return out
}

// parseSrcset returns the URL part of each comma separated srcset candidate.
func parseSrcset(val string) []string {
	var urls []string
	for _, part := range strings.Split(val, ",") {
		fields := strings.Fields(part)
		if len(fields) > 0 {
			urls = append(urls, fields[0])
		}
	}
	return urls
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// isLocalLink reports whether linkURL points at a file of the generated site.
func isLocalLink(linkURL string) bool {
	if !ShouldVerifyLink(linkURL) {
		return false
	}

	u, err := url.Parse(linkURL)
	if err != nil {
		return false
	}
	if u.Scheme != "" || u.Host != "" {
		return false
	}
	return u.Path != ""
}

// ShouldVerifyLink reports whether a reference is worth resolving at all.
func ShouldVerifyLink(linkURL string) bool {
	if linkURL == "" || strings.HasPrefix(linkURL, "#") {
		return false
	}

	lower := strings.ToLower(linkURL)
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:", "//"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	return true
}

// FilterLocal returns the links that resolve inside the output tree.
func FilterLocal(links []*Link) []*Link {
	var filtered []*Link
	for _, link := range links {
		if link.IsLocal {
			filtered = append(filtered, link)
		}
	}
	return filtered
}
