package main

import (
	"path"
	"strings"
)

// content types come from a fixed table keyed on extension rather than
// sniffing file contents, so a given name always maps to the same type.
// extensionless names are served as clean html urls.
var contentTypes = map[string]string{
	"":      "text/html",
	".htm":  "text/html",
	".html": "text/html",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".js":   "text/javascript",
	".css":  "text/css",
	".svg":  "image/svg+xml",
}

const defaultContentType = "application/octet-stream"

// contentTypeFor maps a key name to the content type its object should be
// served with. A trailing .gz is stripped first so precompressed assets keep
// the type of the underlying file.
func contentTypeFor(name string) string {
	name = strings.TrimSuffix(name, ".gz")
	if contentType, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return contentType
	}

	return defaultContentType
}
