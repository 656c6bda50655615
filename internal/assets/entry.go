package assets

import (
	"path/filepath"
	"strings"
)

// Kind classifies an asset by extension.
type Kind int

const (
	// KindOther files are copied byte for byte.
	KindOther Kind = iota
	// KindRaster files are transcoded to lossless WebP.
	KindRaster
)

func (k Kind) String() string {
	if k == KindRaster {
		return "raster"
	}
	return "other"
}

// Entry is a file discovered while walking the source asset tree.
type Entry struct {
	Source string // path under the source tree
	Rel    string // slash separated path relative to the source root
	Dest   string // final path under the output tree
	Kind   Kind
}

// Classifier maps lower-cased extensions to kinds.
type Classifier struct {
	raster map[string]struct{}
}

// NewClassifier builds a Classifier for the given raster extensions. Case and
// a missing leading dot are tolerated.
func NewClassifier(extensions []string) Classifier {
	c := Classifier{raster: make(map[string]struct{}, len(extensions))}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.raster[ext] = struct{}{}
	}
	return c
}

// Classify returns the kind of the file at path.
func (c Classifier) Classify(path string) Kind {
	if _, ok := c.raster[strings.ToLower(filepath.Ext(path))]; ok {
		return KindRaster
	}
	return KindOther
}
