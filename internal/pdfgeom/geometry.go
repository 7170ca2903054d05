// Package pdfgeom reads the page geometry of PDF files. It is only concerned with the
// size of the first page, which decides the orientation a document is printed in.
package pdfgeom

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

var (
	// ErrNoPages is returned when a PDF has no pages to measure.
	ErrNoPages = errors.New("pdf has no pages")
	// ErrInvalidMediaBox is returned when a page box is missing or degenerate.
	ErrInvalidMediaBox = errors.New("pdf page has no usable media box")
	// ErrNoReaders is returned by a Chain that was built without readers.
	ErrNoReaders = errors.New("no page geometry readers configured")
)

// Size is the effective size of a page in PDF points, after the page rotation has
// been applied.
type Size struct {
	Width  float64
	Height float64
}

// Landscape reports whether the page is wider than it is tall.
func (s Size) Landscape() bool { return s.Width > s.Height }

// Reader measures the first page of a PDF file.
type Reader interface {
	FirstPageSize(ctx context.Context, path string) (Size, error)
}

// Chain tries each reader in order and returns the first successful measurement.
// PDF parsers differ in how strictly they treat damaged files, so a later reader
// often succeeds where an earlier one gives up.
type Chain struct {
	readers []Reader
}

// NewChain builds a Chain from the given readers.
func NewChain(readers ...Reader) *Chain {
	return &Chain{readers: readers}
}

// NewDefaultChain returns the production chain: pdfcpu, then ledongthuc/pdf, then the
// pdfinfo command when it is installed.
func NewDefaultChain() *Chain {
	readers := []Reader{NewPDFCPUReader(), NewMediaBoxReader()}

	if _, lookErr := exec.LookPath(pdfinfoBinary); lookErr == nil {
		readers = append(readers, NewPDFInfoReader(nil))
	}

	return NewChain(readers...)
}

// FirstPageSize implements Reader.
func (chain *Chain) FirstPageSize(ctx context.Context, path string) (Size, error) {
	if len(chain.readers) == 0 {
		return Size{Width: 0, Height: 0}, ErrNoReaders
	}

	var readErrs []error

	for _, reader := range chain.readers {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Size{Width: 0, Height: 0}, fmt.Errorf("reading page geometry: %w", ctxErr)
		}

		size, readErr := reader.FirstPageSize(ctx, path)
		if readErr == nil {
			return size, nil
		}

		readErrs = append(readErrs, readErr)
	}

	return Size{Width: 0, Height: 0}, fmt.Errorf(
		"could not read page geometry of %s: %w",
		path,
		errors.Join(readErrs...),
	)
}

// rotated swaps the sides of a page box for a quarter-turn /Rotate value.
func rotated(width, height float64, rotate int) (Size, error) {
	if width <= 0 || height <= 0 {
		return Size{Width: 0, Height: 0}, ErrInvalidMediaBox
	}

	normalized := ((rotate % 360) + 360) % 360
	if normalized == 90 || normalized == 270 {
		return Size{Width: height, Height: width}, nil
	}

	return Size{Width: width, Height: height}, nil
}
