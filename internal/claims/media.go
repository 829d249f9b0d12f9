package claims

import (
	"mime"
	"strings"
)

const (
	MediaPDF  = "application/pdf"
	MediaJPEG = "image/jpeg"
	MediaPNG  = "image/png"
	MediaGIF  = "image/gif"
	MediaWebP = "image/webp"
)

// AllowedMediaTypes are the evidence types both oracle transports accept as
// inline parts.
var AllowedMediaTypes = []string{MediaPDF, MediaJPEG, MediaPNG, MediaGIF, MediaWebP}

// NormalizeMediaType lower-cases the type and drops any parameters.
func NormalizeMediaType(mediaType string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(mediaType)
}

func MediaTypeAllowed(mediaType string) bool {
	mt := NormalizeMediaType(mediaType)
	for _, a := range AllowedMediaTypes {
		if mt == a {
			return true
		}
	}
	return false
}
