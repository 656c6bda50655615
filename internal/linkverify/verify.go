package linkverify

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Broken reasons.
const (
	ReasonMissing       = "missing"
	ReasonOutsideOutput = "outside_output"
	ReasonMalformed     = "malformed"
)

// BrokenLink is a local reference that does not resolve to a file.
type BrokenLink struct {
	Link     *Link
	Resolved string // Filesystem path the reference was checked against
	Reason   string
}

// Result summarises verification of a single page.
type Result struct {
	Page    string
	Checked int
	Broken  []BrokenLink
}

// VerifyPage extracts the local references of htmlPath and checks each one
// against the files under outputDir.
func VerifyPage(outputDir, htmlPath string) (*Result, error) {
	links, err := ExtractLinks(htmlPath)
	if err != nil {
		return nil, err
	}

	res := &Result{Page: htmlPath}
	for _, link := range FilterLocal(links) {
		res.Checked++
		resolved, reason := resolveLocal(outputDir, htmlPath, link.URL)
		if reason != "" {
			res.Broken = append(res.Broken, BrokenLink{Link: link, Resolved: resolved, Reason: reason})
		}
	}
	return res, nil
}

// resolveLocal maps a reference to a path under outputDir and returns a
// non-empty reason when it cannot be satisfied.
func resolveLocal(outputDir, htmlPath, ref string) (string, string) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", ReasonMalformed
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		return "", ReasonMalformed
	}

	var rel string
	if strings.HasPrefix(p, "/") {
		rel = path.Clean(strings.TrimPrefix(p, "/"))
	} else {
		pageDir, err := filepath.Rel(outputDir, filepath.Dir(htmlPath))
		if err != nil {
			return "", ReasonOutsideOutput
		}
		rel = path.Clean(path.Join(filepath.ToSlash(pageDir), p))
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ReasonOutsideOutput
	}

	local := filepath.Join(outputDir, filepath.FromSlash(rel))
	if strings.HasSuffix(p, "/") || rel == "." {
		local = filepath.Join(local, "index.html")
	}

	info, err := os.Stat(local)
	if err != nil {
		return local, ReasonMissing
	}
	if info.IsDir() {
		idx := filepath.Join(local, "index.html")
		if _, err := os.Stat(idx); err != nil {
			return idx, ReasonMissing
		}
	}
	return local, ""
}
