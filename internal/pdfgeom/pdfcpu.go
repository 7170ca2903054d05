package pdfgeom

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// disableConfigDir keeps pdfcpu from creating its configuration directory under the
// user's profile on first use.
var disableConfigDir sync.Once

// PDFCPUReader measures pages with pdfcpu.
type PDFCPUReader struct{}

// NewPDFCPUReader returns a Reader backed by pdfcpu.
func NewPDFCPUReader() *PDFCPUReader {
	disableConfigDir.Do(api.DisableConfigDir)

	return &PDFCPUReader{}
}

// FirstPageSize implements Reader.
func (reader *PDFCPUReader) FirstPageSize(_ context.Context, path string) (Size, error) {
	pdfCtx, readErr := api.ReadContextFile(path)
	if readErr != nil {
		return Size{Width: 0, Height: 0}, fmt.Errorf("pdfcpu: failed to read %s: %w", path, readErr)
	}

	if pdfCtx.PageCount < 1 {
		return Size{Width: 0, Height: 0}, ErrNoPages
	}

	// Inherited attributes carry MediaBox and Rotate from the page tree.
	_, _, attrs, dictErr := pdfCtx.PageDict(1, false)
	if dictErr != nil {
		return Size{Width: 0, Height: 0}, fmt.Errorf("pdfcpu: failed to get page dict: %w", dictErr)
	}

	if attrs == nil || attrs.MediaBox == nil {
		return Size{Width: 0, Height: 0}, ErrInvalidMediaBox
	}

	return rotated(attrs.MediaBox.Width(), attrs.MediaBox.Height(), attrs.Rotate)
}
