// Package evidence turns uploaded receipts, certificates and policy scans into
// inline documents that can travel inside an oracle request.
package evidence

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/joelkehle/claimestimate/internal/claims"
)

const (
	MediaPDF  = claims.MediaPDF
	MediaJPEG = claims.MediaJPEG
	MediaPNG  = claims.MediaPNG
	MediaGIF  = claims.MediaGIF
	MediaWebP = claims.MediaWebP
)

var AllowedMediaTypes = claims.AllowedMediaTypes

// MaxParallel bounds EncodeAll's worker count.
const MaxParallel = 4

type Source struct {
	Name      string
	Data      []byte
	MediaType string
}

func Allowed(mediaType string) bool { return claims.MediaTypeAllowed(mediaType) }

func IsImage(mediaType string) bool {
	return strings.HasPrefix(normalize(mediaType), "image/")
}

// Encode checks the media type against the allow-list and only then encodes.
// An empty declared type is sniffed from the content.
func Encode(data []byte, declaredMediaType string) (claims.InlineDocument, error) {
	mt := normalize(declaredMediaType)
	if mt == "" {
		mt = normalize(http.DetectContentType(data))
	}
	if !Allowed(mt) {
		return claims.InlineDocument{}, claims.NewError(claims.CodeUnsupportedMediaType, fmt.Sprintf("%q is not one of %s", mt, strings.Join(AllowedMediaTypes, ", ")), nil)
	}
	if len(data) == 0 {
		return claims.InlineDocument{}, claims.NewError(claims.CodeInvalidEvent, "evidence document is empty", nil)
	}
	return claims.InlineDocument{
		MediaType: mt,
		Payload:   base64.StdEncoding.EncodeToString(data),
	}, nil
}

func EncodeFile(path string) (claims.InlineDocument, error) {
	src, err := readSource(path)
	if err != nil {
		return claims.InlineDocument{}, err
	}
	return Encode(src.Data, src.MediaType)
}

// readSource rejects a disallowed extension before reading the file.
func readSource(path string) (Source, error) {
	declared := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if declared != "" && !Allowed(declared) {
		return Source{}, claims.NewError(claims.CodeUnsupportedMediaType, fmt.Sprintf("%s: %q is not supported", filepath.Base(path), normalize(declared)), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read evidence %s: %w", path, err)
	}
	return Source{Name: filepath.Base(path), Data: data, MediaType: declared}, nil
}

// EncodeAll encodes sources concurrently. The result keeps the order of
// sources regardless of which encodings finish first.
func EncodeAll(ctx context.Context, sources []Source) ([]claims.InlineDocument, error) {
	out := make([]claims.InlineDocument, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxParallel)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := Encode(src.Data, src.MediaType)
			if err != nil {
				return fmt.Errorf("evidence %d (%s): %w", i, src.Name, err)
			}
			out[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeFiles reads and encodes paths, preserving their order.
func EncodeFiles(ctx context.Context, paths []string) ([]claims.InlineDocument, error) {
	sources := make([]Source, len(paths))
	for i, p := range paths {
		src, err := readSource(p)
		if err != nil {
			return nil, err
		}
		sources[i] = src
	}
	return EncodeAll(ctx, sources)
}

func Decode(doc claims.InlineDocument) ([]byte, error) {
	return base64.StdEncoding.DecodeString(doc.Payload)
}

func DataURL(doc claims.InlineDocument) string {
	return "data:" + doc.MediaType + ";base64," + doc.Payload
}

// ParseDataURL reads the "data:<type>;base64,<payload>" form produced by
// browser file readers.
func ParseDataURL(s string) (claims.InlineDocument, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return claims.InlineDocument{}, fmt.Errorf("not a data url")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return claims.InlineDocument{}, fmt.Errorf("data url has no payload")
	}
	mt, enc, _ := strings.Cut(header, ";")
	if enc != "base64" {
		return claims.InlineDocument{}, fmt.Errorf("data url is not base64 encoded")
	}
	if !Allowed(mt) {
		return claims.InlineDocument{}, claims.NewError(claims.CodeUnsupportedMediaType, fmt.Sprintf("%q is not supported", normalize(mt)), nil)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return claims.InlineDocument{}, fmt.Errorf("data url payload: %w", err)
	}
	return claims.InlineDocument{MediaType: normalize(mt), Payload: payload}, nil
}

func normalize(mediaType string) string { return claims.NormalizeMediaType(mediaType) }
