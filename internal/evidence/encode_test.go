package evidence

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/claimestimate/internal/claims"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEncodeAllowedTypes(t *testing.T) {
	doc, err := Encode([]byte("%PDF-1.7 receipt"), "Application/PDF; name=receipt.pdf")
	require.NoError(t, err)
	assert.Equal(t, MediaPDF, doc.MediaType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.7 receipt")), doc.Payload)

	raw, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 receipt", string(raw))
}

func TestEncodeRejectsBeforeEncoding(t *testing.T) {
	_, err := Encode([]byte("MZ\x90\x00"), "application/x-msdownload")
	assert.ErrorIs(t, err, claims.ErrUnsupportedMediaType)

	// Even an empty payload reports the media type problem first.
	_, err = Encode(nil, "text/plain")
	assert.ErrorIs(t, err, claims.ErrUnsupportedMediaType)

	_, err = Encode(nil, MediaPNG)
	assert.ErrorIs(t, err, claims.ErrInvalidEvent)
}

func TestEncodeSniffsEmptyDeclaredType(t *testing.T) {
	doc, err := Encode(pngHeader, "")
	require.NoError(t, err)
	assert.Equal(t, MediaPNG, doc.MediaType)
	assert.True(t, IsImage(doc.MediaType))

	_, err = Encode([]byte("just some text"), "")
	assert.ErrorIs(t, err, claims.ErrUnsupportedMediaType)
}

func TestEncodeAllPreservesSelectionOrder(t *testing.T) {
	var sources []Source
	for i := 0; i < 12; i++ {
		// Larger payloads first so that later sources tend to finish earlier.
		size := (12 - i) * 4096
		data := make([]byte, size)
		copy(data, fmt.Sprintf("%%PDF-%02d", i))
		sources = append(sources, Source{Name: fmt.Sprintf("f%d.pdf", i), Data: data, MediaType: MediaPDF})
	}
	docs, err := EncodeAll(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, docs, len(sources))
	for i, doc := range docs {
		raw, err := Decode(doc)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%%PDF-%02d", i), string(raw[:7]))
	}
}

func TestEncodeAllFailsOnAnyUnsupported(t *testing.T) {
	_, err := EncodeAll(context.Background(), []Source{
		{Name: "ok.png", Data: pngHeader, MediaType: MediaPNG},
		{Name: "bad.txt", Data: []byte("x"), MediaType: "text/plain"},
	})
	assert.ErrorIs(t, err, claims.ErrUnsupportedMediaType)
}

func TestEncodeFiles(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "receipt.pdf")
	png := filepath.Join(dir, "scan.PNG")
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(png, pngHeader, 0o644))
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))

	docs, err := EncodeFiles(context.Background(), []string{png, pdf})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, MediaPNG, docs[0].MediaType)
	assert.Equal(t, MediaPDF, docs[1].MediaType)

	_, err = EncodeFile(txt)
	assert.ErrorIs(t, err, claims.ErrUnsupportedMediaType)
}

func TestDataURLRoundTrip(t *testing.T) {
	doc, err := Encode(pngHeader, MediaPNG)
	require.NoError(t, err)
	back, err := ParseDataURL(DataURL(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	_, err = ParseDataURL("data:text/html;base64,PGI+")
	assert.ErrorIs(t, err, claims.ErrUnsupportedMediaType)
	_, err = ParseDataURL("https://example.com/a.png")
	assert.Error(t, err)
	_, err = ParseDataURL("data:image/png,raw")
	assert.Error(t, err)
}
