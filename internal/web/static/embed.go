// Package static embeds the booth landing page served at the web root.
package static

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed all:dist
var distFS embed.FS

// IndexFile is served for every client-side route.
const IndexFile = "index.html"

// Files returns the embedded dist directory.
func Files() fs.FS {
	fsys, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Lookup maps a URL path to a regular file in fsys. Directories, dotfiles and
// missing files report false.
func Lookup(fsys fs.FS, urlPath string) (string, bool) {
	name := strings.TrimPrefix(urlPath, "/")
	if name == "" {
		name = IndexFile
	}
	if !fs.ValidPath(name) {
		return "", false
	}
	for part := range strings.SplitSeq(name, "/") {
		if strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	info, err := fs.Stat(fsys, name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return name, true
}
