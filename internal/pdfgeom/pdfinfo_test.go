package pdfgeom_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/docprint/internal/pdfgeom"
)

type fakeExec struct {
	err    error
	run    map[string][]byte
	stdout []byte
}

func (f *fakeExec) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := name + " " + strings.Join(args, " ")
	if out, ok := f.run[key]; ok {
		return out, nil
	}

	return f.stdout, f.err
}

func TestParsePdfInfoOutput(t *testing.T) {
	t.Parallel()

	t.Run("Landscape A4", func(t *testing.T) {
		t.Parallel()

		output := "Title:          Report\nPages:          3\n" +
			"Page size:      841.89 x 595.28 pts (A4)\nPage rot:       0\n"
		size, err := pdfgeom.ParsePdfInfoOutputForTest(output)
		require.NoError(t, err)
		assert.True(t, size.Landscape())
	})

	t.Run("Rotation swaps sides", func(t *testing.T) {
		t.Parallel()

		output := "Page size:      612 x 792 pts (letter)\nPage rot:       90\n"
		size, err := pdfgeom.ParsePdfInfoOutputForTest(output)
		require.NoError(t, err)
		assert.Equal(t, pdfgeom.Size{Width: 792, Height: 612}, size)
	})

	t.Run("Output without page size line", func(t *testing.T) {
		t.Parallel()

		_, err := pdfgeom.ParsePdfInfoOutputForTest("Title: Test Doc\nPages: 15")
		require.ErrorIs(t, err, pdfgeom.ErrPdfInfoOutput)
	})
}

func TestPDFInfoReader(t *testing.T) {
	t.Parallel()

	executor := &fakeExec{
		err: nil,
		run: map[string][]byte{
			"pdfinfo /tmp/doc.pdf": []byte("Page size:      612 x 792 pts (letter)\n"),
		},
		stdout: nil,
	}
	reader := pdfgeom.NewPDFInfoReader(executor)

	size, err := reader.FirstPageSize(context.Background(), "/tmp/doc.pdf")
	require.NoError(t, err)
	assert.False(t, size.Landscape())

	_, err = reader.FirstPageSize(context.Background(), "")
	require.Error(t, err)

	failing := pdfgeom.NewPDFInfoReader(&fakeExec{
		err:    errors.New("exit status 1"),
		run:    nil,
		stdout: []byte("Syntax Error"),
	})
	_, err = failing.FirstPageSize(context.Background(), "/tmp/broken.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Syntax Error")
}
