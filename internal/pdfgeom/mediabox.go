package pdfgeom

import (
	"context"
	"fmt"
	"io"
	"log"

	lpdf "github.com/ledongthuc/pdf"
)

// maxPageTreeDepth bounds the walk up /Parent links so a cyclic page tree cannot hang
// the reader.
const maxPageTreeDepth = 32

// MediaBoxReader measures pages with ledongthuc/pdf. It is more lenient than pdfcpu
// with damaged cross-reference tables.
type MediaBoxReader struct{}

// NewMediaBoxReader returns a Reader backed by ledongthuc/pdf.
func NewMediaBoxReader() *MediaBoxReader {
	return &MediaBoxReader{}
}

// FirstPageSize implements Reader.
func (reader *MediaBoxReader) FirstPageSize(_ context.Context, path string) (size Size, err error) {
	file, pdfReader, openErr := lpdf.Open(path)
	if openErr != nil {
		return Size{Width: 0, Height: 0}, fmt.Errorf("ledongthuc: failed to open %s: %w", path, openErr)
	}
	defer closeQuietly(file, path)

	// The parser panics on some malformed objects instead of returning an error.
	defer func() {
		if recovered := recover(); recovered != nil {
			size = Size{Width: 0, Height: 0}
			err = fmt.Errorf("ledongthuc: malformed pdf %s: %v", path, recovered)
		}
	}()

	if pdfReader.NumPage() < 1 {
		return Size{Width: 0, Height: 0}, ErrNoPages
	}

	page := pdfReader.Page(1)
	if page.V.IsNull() {
		return Size{Width: 0, Height: 0}, ErrNoPages
	}

	width, height, boxErr := inheritedMediaBox(page.V)
	if boxErr != nil {
		return Size{Width: 0, Height: 0}, boxErr
	}

	rotate := int(inheritedKey(page.V, "Rotate").Int64())

	return rotated(width, height, rotate)
}

// inheritedMediaBox resolves the MediaBox of a page, following the page tree upwards
// when the page itself does not define one.
func inheritedMediaBox(page lpdf.Value) (float64, float64, error) {
	mediaBox := inheritedKey(page, "MediaBox")
	if mediaBox.Kind() != lpdf.Array || mediaBox.Len() != 4 {
		return 0, 0, ErrInvalidMediaBox
	}

	// MediaBox is [x0, y0, x1, y1].
	x0 := mediaBox.Index(0).Float64()
	y0 := mediaBox.Index(1).Float64()
	x1 := mediaBox.Index(2).Float64()
	y1 := mediaBox.Index(3).Float64()

	return abs(x1 - x0), abs(y1 - y0), nil
}

func inheritedKey(node lpdf.Value, key string) lpdf.Value {
	current := node
	for range maxPageTreeDepth {
		if current.Kind() != lpdf.Dict {
			break
		}

		value := current.Key(key)
		if !value.IsNull() {
			return value
		}

		current = current.Key("Parent")
	}

	return lpdf.Value{}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}

func closeQuietly(closer io.Closer, path string) {
	if closeErr := closer.Close(); closeErr != nil {
		log.Printf("Warning: failed to close '%s': %v", path, closeErr)
	}
}
