package linkverify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><head>
<link rel="stylesheet" href="css/pico.min.css">
<link rel="icon" href="https://example.com/favicon.ico">
<script src="/js/app.js"></script>
</head><body>
<a href="#top">top</a>
<a href="mailto:me@example.com">mail</a>
<a href="LICENSE">license</a>
<img src="assets/qr_code_generated.webp" srcset="assets/a.webp 1x, assets/b.webp 2x">
<img src="data:image/png;base64,AAAA">
<a href="//cdn.example.com/x.js">cdn</a>
</body></html>`

func TestExtractLinksFromReader(t *testing.T) {
	links, err := ExtractLinksFromReader(strings.NewReader(page))
	require.NoError(t, err)

	var local []string
	for _, l := range FilterLocal(links) {
		local = append(local, l.URL)
	}
	assert.Equal(t, []string{
		"css/pico.min.css",
		"/js/app.js",
		"LICENSE",
		"assets/qr_code_generated.webp",
		"assets/a.webp",
		"assets/b.webp",
	}, local)
	assert.Len(t, links, 11)
}

func TestShouldVerifyLink(t *testing.T) {
	tests := map[string]bool{
		"":                   false,
		"#anchor":            false,
		"MAILTO:x@y.z":       false,
		"tel:123":            false,
		"javascript:void(0)": false,
		"data:,hi":           false,
		"//cdn.example.com":  false,
		"assets/x.webp":      true,
		"https://a.b/c":      true,
	}
	for in, want := range tests {
		assert.Equal(t, want, ShouldVerifyLink(in), in)
	}
}

func TestVerifyPage(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "css"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(out, "assets"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "css", "pico.min.css"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(out, "assets", "qr_code_generated.webp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(out, "assets", "a.webp"), []byte("x"), 0o600))
	index := filepath.Join(out, "index.html")
	require.NoError(t, os.WriteFile(index, []byte(page), 0o600))

	res, err := VerifyPage(out, index)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Checked)

	var missing []string
	for _, b := range res.Broken {
		assert.Equal(t, ReasonMissing, b.Reason)
		missing = append(missing, b.Link.URL)
	}
	assert.ElementsMatch(t, []string{"/js/app.js", "LICENSE", "assets/b.webp"}, missing)
}

func TestResolveLocal(t *testing.T) {
	out := t.TempDir()
	index := filepath.Join(out, "index.html")
	require.NoError(t, os.WriteFile(index, []byte("ok"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(out, "docs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "docs", "index.html"), []byte("ok"), 0o600))

	_, reason := resolveLocal(out, index, "../secret.txt")
	assert.Equal(t, ReasonOutsideOutput, reason)

	_, reason = resolveLocal(out, index, "docs/")
	assert.Empty(t, reason)

	_, reason = resolveLocal(out, index, "docs")
	assert.Empty(t, reason)

	_, reason = resolveLocal(out, index, "index.html?v=1#x")
	assert.Empty(t, reason)

	_, reason = resolveLocal(out, index, "/")
	assert.Empty(t, reason)
}

func TestExtractLinks_MissingFile(t *testing.T) {
	_, err := ExtractLinks(filepath.Join(t.TempDir(), "nope.html"))
	require.Error(t, err)
}
