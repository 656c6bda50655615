// Package metadata loads the site details file that is bound into the page
// template.
package metadata

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

const (
	// ImagesKey holds the mapping of image names to asset paths.
	ImagesKey = "images"
	// QRCodeKey holds the optional QR configuration mapping.
	QRCodeKey = "qr_code"
	// QRURLKey is the key under QRCodeKey carrying the encoded URL.
	QRURLKey = "url"
)

// Details is the free-form site metadata.
type Details map[string]any

// Load reads and parses the YAML metadata file. A missing, unreadable, empty
// or non-mapping document is fatal.
func Load(path string) (Details, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if os.IsNotExist(err) {
		return nil, ferrors.NotFoundError("metadata file not found").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if err != nil {
		return nil, ferrors.FileSystemError("failed to read metadata file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return Parse(data, path)
}

// Parse decodes a metadata document; name is only used for error context.
func Parse(data []byte, name string) (Details, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ferrors.ValidationError("metadata file is empty").
			WithContext("path", name).
			Build()
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ferrors.ValidationError("failed to parse metadata file").
			WithCause(err).
			WithContext("path", name).
			Build()
	}

	m, ok := normalize(raw).(map[string]any)
	if !ok || len(m) == 0 {
		return nil, ferrors.ValidationError("metadata file must contain a non-empty mapping").
			WithContext("path", name).
			Build()
	}
	return Details(m), nil
}

// QRURL returns qr_code.url when it is a non-empty scalar. Numbers and
// booleans are encoded in their text form.
func (d Details) QRURL() (string, bool) {
	qr, ok := d[QRCodeKey].(map[string]any)
	if !ok {
		return "", false
	}
	var v string
	switch u := qr[QRURLKey].(type) {
	case nil, map[string]any, []any:
		return "", false
	case string:
		v = u
	default:
		v = fmt.Sprint(u)
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// SetImage stores path under images.<key>, creating the images mapping when
// it is absent or not a mapping.
func (d Details) SetImage(key, path string) {
	images, ok := d[ImagesKey].(map[string]any)
	if !ok {
		images = make(map[string]any)
		d[ImagesKey] = images
	}
	images[key] = path
}

// Image returns images.<key> when it is a string.
func (d Details) Image(key string) (string, bool) {
	images, ok := d[ImagesKey].(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := images[key].(string)
	return s, ok
}

// normalize converts YAML maps with non-string keys into map[string]any so
// templates can index every level by name.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[toKey(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

func toKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	b, err := yaml.Marshal(k)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
