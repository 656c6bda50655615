// Package fetch downloads the stylesheet archive, extracts the single member
// the site needs and writes it, with a gzip sibling, into the output tree.
//
// The archive is requested exactly once per build; there is no retry and no
// cache.
package fetch
