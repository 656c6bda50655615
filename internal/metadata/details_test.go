package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const sample = `
name: Jane Doe
title: engineer
links:
  - label: GitHub
    href: https://github.com/example
images:
  avatar: assets/avatar.webp
qr_code:
  url: https://example.com/card
ports:
  80: http
`

func writeDetails(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "details.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	d, err := Load(writeDetails(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", d["name"])
	url, ok := d.QRURL()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/card", url)

	avatar, ok := d.Image("avatar")
	require.True(t, ok)
	assert.Equal(t, "assets/avatar.webp", avatar)

	ports, ok := d["ports"].(map[string]any)
	require.True(t, ok, "non-string keys are normalized")
	assert.Equal(t, "http", ports["80"])

	links, ok := d["links"].([]any)
	require.True(t, ok)
	first, ok := links[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GitHub", first["label"])
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		category ferrors.ErrorCategory
	}{
		{"empty", "", ferrors.CategoryValidation},
		{"whitespace", "  \n\t\n", ferrors.CategoryValidation},
		{"null document", "~\n", ferrors.CategoryValidation},
		{"scalar", "just a string\n", ferrors.CategoryValidation},
		{"list", "- a\n- b\n", ferrors.CategoryValidation},
		{"invalid yaml", "name: [unclosed\n", ferrors.CategoryValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeDetails(t, tt.body))
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, tt.category))
			assert.True(t, ferrors.HasSeverity(err, ferrors.SeverityFatal))
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "details.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestQRURL_Absent(t *testing.T) {
	for _, body := range []string{
		"name: x\n",
		"qr_code: yes\n",
		"qr_code:\n  url:\n",
		"qr_code:\n  url: '  '\n",
		"qr_code:\n  url: [a, b]\n",
		"qr_code:\n  url:\n    href: x\n",
	} {
		d, err := Parse([]byte(body), "details.yaml")
		require.NoError(t, err)
		_, ok := d.QRURL()
		assert.False(t, ok, body)
	}
}

func TestQRURL_ScalarValuesAreStringified(t *testing.T) {
	tests := map[string]string{
		"qr_code:\n  url: 12345\n":    "12345",
		"qr_code:\n  url: 3.5\n":      "3.5",
		"qr_code:\n  url: true\n":     "true",
		"qr_code:\n  url: ' x.io '\n": "x.io",
	}
	for body, want := range tests {
		d, err := Parse([]byte(body), "details.yaml")
		require.NoError(t, err)
		got, ok := d.QRURL()
		require.True(t, ok, body)
		assert.Equal(t, want, got, body)
	}
}

func TestSetImage(t *testing.T) {
	d := Details{"name": "x"}
	d.SetImage("qr", "assets/qr_code_generated.webp")
	got, ok := d.Image("qr")
	require.True(t, ok)
	assert.Equal(t, "assets/qr_code_generated.webp", got)

	d = Details{"images": "not a map"}
	d.SetImage("qr", "a.webp")
	got, _ = d.Image("qr")
	assert.Equal(t, "a.webp", got)

	d = Details{"images": map[string]any{"avatar": "a.webp"}}
	d.SetImage("qr", "q.webp")
	assert.Len(t, d["images"], 2)
}
