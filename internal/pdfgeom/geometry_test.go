package pdfgeom_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/docprint/internal/pdfgeom"
)

// writeTestPDF writes a single-page PDF whose MediaBox is inherited from the page tree
// root. rotate is written on the page when non-zero.
func writeTestPDF(t *testing.T, width, height float64, rotate int) string {
	t.Helper()

	pageExtra := ""
	if rotate != 0 {
		pageExtra = fmt.Sprintf(" /Rotate %d", rotate)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf(
			"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 %g %g] >>",
			width,
			height,
		),
		"<< /Type /Page /Parent 2 0 R /Resources << >> /Contents 4 0 R" + pageExtra + " >>",
		"<< /Length 0 >>\nstream\n\nendstream",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")

	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}

	fmt.Fprintf(
		&buf,
		"trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1,
		xrefOffset,
	)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

func TestReaders_FirstPageSize(t *testing.T) {
	t.Parallel()

	readers := map[string]pdfgeom.Reader{
		"pdfcpu":     pdfgeom.NewPDFCPUReader(),
		"ledongthuc": pdfgeom.NewMediaBoxReader(),
	}

	testCases := []struct {
		name          string
		width         float64
		height        float64
		rotate        int
		wantLandscape bool
	}{
		{name: "A4 portrait", width: 595, height: 842, rotate: 0, wantLandscape: false},
		{name: "A4 landscape", width: 842, height: 595, rotate: 0, wantLandscape: true},
		{name: "Portrait box rotated 90", width: 595, height: 842, rotate: 90, wantLandscape: true},
		{name: "Landscape box rotated 270", width: 842, height: 595, rotate: 270, wantLandscape: false},
	}

	for readerName, reader := range readers {
		for _, tc := range testCases {
			t.Run(readerName+"/"+tc.name, func(t *testing.T) {
				t.Parallel()

				path := writeTestPDF(t, tc.width, tc.height, tc.rotate)

				size, err := reader.FirstPageSize(context.Background(), path)
				require.NoError(t, err)
				assert.Equal(t, tc.wantLandscape, size.Landscape())
			})
		}
	}
}

func TestReaders_MissingFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.pdf")

	_, err := pdfgeom.NewPDFCPUReader().FirstPageSize(context.Background(), missing)
	require.Error(t, err)

	_, err = pdfgeom.NewMediaBoxReader().FirstPageSize(context.Background(), missing)
	require.Error(t, err)
}

type fakeReader struct {
	err   error
	calls *int
	size  pdfgeom.Size
}

func (f fakeReader) FirstPageSize(_ context.Context, _ string) (pdfgeom.Size, error) {
	if f.calls != nil {
		*f.calls++
	}

	return f.size, f.err
}

func TestChain_FallsBackInOrder(t *testing.T) {
	t.Parallel()

	firstCalls, secondCalls, thirdCalls := 0, 0, 0
	chain := pdfgeom.NewChain(
		fakeReader{err: errors.New("broken xref"), calls: &firstCalls, size: pdfgeom.Size{}},
		fakeReader{err: nil, calls: &secondCalls, size: pdfgeom.Size{Width: 800, Height: 600}},
		fakeReader{err: nil, calls: &thirdCalls, size: pdfgeom.Size{Width: 1, Height: 2}},
	)

	size, err := chain.FirstPageSize(context.Background(), "doc.pdf")
	require.NoError(t, err)
	assert.True(t, size.Landscape())
	assert.Equal(t, 1, firstCalls)
	assert.Equal(t, 1, secondCalls)
	assert.Equal(t, 0, thirdCalls)
}

func TestChain_AllFail(t *testing.T) {
	t.Parallel()

	errFirst := errors.New("first")
	errSecond := errors.New("second")
	chain := pdfgeom.NewChain(
		fakeReader{err: errFirst, calls: nil, size: pdfgeom.Size{}},
		fakeReader{err: errSecond, calls: nil, size: pdfgeom.Size{}},
	)

	_, err := chain.FirstPageSize(context.Background(), "doc.pdf")
	require.ErrorIs(t, err, errFirst)
	require.ErrorIs(t, err, errSecond)

	_, err = pdfgeom.NewChain().FirstPageSize(context.Background(), "doc.pdf")
	require.ErrorIs(t, err, pdfgeom.ErrNoReaders)
}

func TestChain_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	chain := pdfgeom.NewChain(fakeReader{err: nil, calls: &calls, size: pdfgeom.Size{}})

	_, err := chain.FirstPageSize(ctx, "doc.pdf")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestSize_Landscape(t *testing.T) {
	t.Parallel()

	assert.True(t, pdfgeom.Size{Width: 842, Height: 595}.Landscape())
	assert.False(t, pdfgeom.Size{Width: 595, Height: 842}.Landscape())
	// A square page is not wider than it is tall.
	assert.False(t, pdfgeom.Size{Width: 500, Height: 500}.Landscape())
}

func TestRotated(t *testing.T) {
	t.Parallel()

	size, err := pdfgeom.RotatedForTest(100, 200, -90)
	require.NoError(t, err)
	assert.Equal(t, pdfgeom.Size{Width: 200, Height: 100}, size)

	size, err = pdfgeom.RotatedForTest(100, 200, 180)
	require.NoError(t, err)
	assert.Equal(t, pdfgeom.Size{Width: 100, Height: 200}, size)

	_, err = pdfgeom.RotatedForTest(0, 200, 0)
	require.ErrorIs(t, err, pdfgeom.ErrInvalidMediaBox)
}
