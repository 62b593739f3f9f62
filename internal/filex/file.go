// Package filex reads local files that the terminal client attaches to
// multipart requests.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is a local file loaded into memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// ContentType guesses a MIME type from the file extension. Unknown
// extensions are sent as application/octet-stream and left for the server to
// reject.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ReadFile loads path, refusing directories and anything above maxSize bytes.
// A maxSize of zero disables the size check.
func ReadFile(path string, maxSize int64) (File, error) {
	path = strings.TrimSpace(path)
	fi, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	if maxSize > 0 && fi.Size() > maxSize {
		return File{}, fmt.Errorf("%s is %d bytes, limit is %d", path, fi.Size(), maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	return File{Name: name, ContentType: ContentType(name), Data: data}, nil
}

// ReadFiles loads every path in order and stops at the first failure.
func ReadFiles(paths []string, maxSize int64) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		f, err := ReadFile(p, maxSize)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
