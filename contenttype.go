package tcaws

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType is stored for payloads that are not recognized as media.
const DefaultContentType = "application/octet-stream"

// ContentTypeDetector returns the content type of a payload.
type ContentTypeDetector func(data []byte) string

// DetectContentType inspects the magic bytes of data and returns its image or
// video MIME type. Anything else, including empty data, is reported as
// DefaultContentType.
func DetectContentType(data []byte) string {
	if len(data) == 0 {
		return DefaultContentType
	}

	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if isMedia(m.String()) {
			return baseType(m.String())
		}
	}

	return DefaultContentType
}

func isMedia(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "video/")
}

// baseType drops MIME parameters such as "; charset=utf-8".
func baseType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(t)
}
