package formats

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// PageFormat selects how a fetched page is handed to the model.
type PageFormat string

const (
	// PageHTML passes the raw HTML through unchanged.
	PageHTML PageFormat = "html"
	// PageMarkdown reduces the page to schema.org recipe data and markdown.
	PageMarkdown PageFormat = "markdown"
)

// ParsePageFormat validates a configured page format name.
func ParsePageFormat(s string) (PageFormat, error) {
	switch PageFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", PageHTML:
		return PageHTML, nil
	case PageMarkdown:
		return PageMarkdown, nil
	}
	return "", fmt.Errorf("unsupported page format %q; allowed formats are: html, markdown", s)
}

// ErrUnsupportedMediaType is returned for images the vision models cannot read.
var ErrUnsupportedMediaType = errors.New("unsupported image media type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageMediaType returns the canonical media type for an image. The
// declared type wins when it is supported; an empty or generic declared
// type falls back to sniffing data.
func ImageMediaType(declared string, data []byte) (string, error) {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if mt == "image/jpg" || mt == "image/pjpeg" {
		mt = "image/jpeg"
	}
	if _, ok := imageExtensions[mt]; ok {
		return mt, nil
	}

	if mt == "" || mt == "application/octet-stream" {
		sniffed := http.DetectContentType(data)
		if _, ok := imageExtensions[sniffed]; ok {
			return sniffed, nil
		}
		mt = sniffed
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
}

// ImageExtension returns the file extension for a supported media type.
func ImageExtension(mediaType string) string {
	if ext, ok := imageExtensions[mediaType]; ok {
		return ext
	}
	return ".bin"
}
