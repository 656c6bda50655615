package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const page = `<!DOCTYPE html>
<html lang="en">
  <head>
    <!-- page head -->
    <title>{{ .name }}</title>
    <link rel="stylesheet" href="css/pico.min.css">
    <style>
      body   { margin : 0px ; }
    </style>
  </head>
  <body>
    <h1>{{ .name | title }}</h1>
    <p>{{ .role | default "unknown" }}</p>
    <div class="bio">{{ markdown .bio }}</div>
    {{ with .images.qr }}<img src="{{ . }}" alt="qr">{{ end }}
    <img src="{{ asset "assets" "avatar.webp" }}" alt="">
  </body>
</html>
`

func TestRenderAndMinify(t *testing.T) {
	r := NewRenderer()
	data := map[string]any{
		"name": "jane doe",
		"bio":  "Builds **things**.",
		"images": map[string]any{
			"qr": "assets/qr_code_generated.webp",
		},
	}

	out, err := r.Render("template.html", page, data)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Jane Doe</h1>")
	assert.Contains(t, out, "<p>unknown</p>")
	assert.Contains(t, out, "<strong>things</strong>")
	assert.Contains(t, out, `src="assets/qr_code_generated.webp"`)
	assert.Contains(t, out, `src="assets/avatar.webp"`)

	min, err := r.Minify(out)
	require.NoError(t, err)
	assert.Less(t, len(min), len(out))
	assert.NotContains(t, min, "<!-- page head -->")
	assert.NotContains(t, min, "\n    ")
	assert.Contains(t, min, "body{margin:0}")
	assert.Contains(t, min, `src="assets/qr_code_generated.webp"`)
	assert.True(t, strings.HasPrefix(strings.ToLower(min), "<!doctype html>"))
}

func TestRender_MissingKeysRenderEmpty(t *testing.T) {
	out, err := NewRenderer().Render("t", `<p>[{{ .missing }}]</p>{{ with .images.qr }}<img src="{{ . }}">{{ end }}`, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "<p>[]</p>", out)
}

func TestRender_WritesValuesVerbatim(t *testing.T) {
	data := map[string]any{
		"phone": "tel:+15551234567",
		"bio":   "I build <strong>fast</strong> sites &amp; tools",
	}
	out, err := NewRenderer().Render("t", `<a href="{{ .phone }}">call</a><p>{{ .bio }}</p>`, data)
	require.NoError(t, err)
	assert.Equal(t, `<a href="tel:+15551234567">call</a><p>I build <strong>fast</strong> sites &amp; tools</p>`, out)
}

func TestRender_MissingKeysInsideBlocksAndPipes(t *testing.T) {
	tpl := `{{ if .name }}[{{ .nick }}]{{ else }}none{{ end }}{{ range .links }}<{{ .missing }}>{{ end }}({{ .absent | title }})`
	out, err := NewRenderer().Render("t", tpl, map[string]any{
		"name":  "jane",
		"links": []any{map[string]any{"url": "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "[]<>()", out)
	assert.NotContains(t, out, "no value")
}

func TestRender_ParseErrorIsFatalTemplateError(t *testing.T) {
	_, err := NewRenderer().Render("t", `{{ if }}`, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
	assert.True(t, ferrors.HasSeverity(err, ferrors.SeverityFatal))
}

func TestRender_ExecErrorIsFatalTemplateError(t *testing.T) {
	_, err := NewRenderer().Render("t", `{{ .name.first }}`, map[string]any{"name": "flat"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
}

func TestRenderFile_Missing(t *testing.T) {
	_, err := NewRenderer().RenderFile(filepath.Join(t.TempDir(), "template.html"), nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestWriteOutput_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0o600))
	require.NoError(t, WriteOutput(path, "new"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestDefaultValue(t *testing.T) {
	assert.Equal(t, "d", defaultValue("d", nil))
	assert.Equal(t, "d", defaultValue("d", ""))
	assert.Equal(t, "d", defaultValue("d", 0))
	assert.Equal(t, "d", defaultValue("d", []any{}))
	assert.Equal(t, "v", defaultValue("d", "v"))
	assert.Equal(t, 3, defaultValue("d", 3))
}

func TestMinify_DropsWhitespaceBetweenHeadElements(t *testing.T) {
	doc := "<!DOCTYPE html><html><head>\n  <title>x</title>\n  <link rel=\"stylesheet\" href=\"css/pico.min.css\">\n</head><body><p>a <b>b</b></p></body></html>"
	min, err := NewRenderer().Minify(doc)
	require.NoError(t, err)
	assert.Contains(t, min, `<title>x</title><link rel="stylesheet" href="css/pico.min.css">`)
	assert.NotContains(t, min, "\n")
	assert.Contains(t, min, "<p>a <b>b</b></p>")
}

func TestWriteOutput_FailureIsFatalFileSystemError(t *testing.T) {
	err := WriteOutput(filepath.Join(t.TempDir(), "missing", "index.html"), "x")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
	assert.True(t, ferrors.HasSeverity(err, ferrors.SeverityFatal))
}
