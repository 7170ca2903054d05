package printdoc_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/book-expert/docprint/internal/pdfgeom"
	"github.com/book-expert/docprint/internal/winprint"
)

// recorder collects collaborator calls in the order they happen.
type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

type fakeDocument struct {
	orientErr   error
	printErr    error
	closeErr    error
	rec         *recorder
	orientation int
}

func (d *fakeDocument) PageOrientation() (int, error) {
	d.rec.add("orientation")

	return d.orientation, d.orientErr
}

func (d *fakeDocument) PrintOut(printer string) error {
	d.rec.add("printout:%s", printer)

	return d.printErr
}

func (d *fakeDocument) Close() error {
	d.rec.add("close")

	return d.closeErr
}

type fakeOffice struct {
	openErr error
	doc     *fakeDocument
	rec     *recorder
}

func (o *fakeOffice) Open(app winprint.App, path string) (winprint.Document, error) {
	o.rec.add("open:%s:%s", app, filepath.Base(path))

	if o.openErr != nil {
		return nil, o.openErr
	}

	return o.doc, nil
}

type fakeGeometry struct {
	err  error
	rec  *recorder
	size pdfgeom.Size
}

func (g *fakeGeometry) FirstPageSize(_ context.Context, path string) (pdfgeom.Size, error) {
	g.rec.add("geometry:%s", filepath.Base(path))

	return g.size, g.err
}

type fakeSettings struct {
	defaultErr     error
	setErr         error
	restoreErr     error
	queueErr       error
	rec            *recorder
	defaultPrinter string
	jobs           []int
	queueCalls     int
}

func (s *fakeSettings) DefaultPrinter() (string, error) {
	return s.defaultPrinter, s.defaultErr
}

func (s *fakeSettings) SetOrientation(printer string, orientation int16) (func() error, error) {
	s.rec.add("set:%s:%d", printer, orientation)

	if s.setErr != nil {
		return nil, s.setErr
	}

	return func() error {
		s.rec.add("restore:%s", printer)

		return s.restoreErr
	}, nil
}

func (s *fakeSettings) QueuedJobs(_ string) (int, error) {
	if s.queueErr != nil {
		return 0, s.queueErr
	}

	if len(s.jobs) == 0 {
		return 0, nil
	}

	index := min(s.queueCalls, len(s.jobs)-1)
	s.queueCalls++

	return s.jobs[index], nil
}

type fakeShell struct {
	err error
	rec *recorder
}

func (s *fakeShell) Print(path, printer string) error {
	s.rec.add("shell:%s:%s", filepath.Base(path), printer)

	return s.err
}

// harness bundles the fakes around one recorder.
type harness struct {
	rec      *recorder
	office   *fakeOffice
	doc      *fakeDocument
	geometry *fakeGeometry
	settings *fakeSettings
	shell    *fakeShell
}

func newHarness() *harness {
	rec := &recorder{events: nil}
	doc := &fakeDocument{orientErr: nil, printErr: nil, closeErr: nil, rec: rec, orientation: 0}

	return &harness{
		rec:    rec,
		doc:    doc,
		office: &fakeOffice{openErr: nil, doc: doc, rec: rec},
		geometry: &fakeGeometry{
			err:  nil,
			rec:  rec,
			size: pdfgeom.Size{Width: 595, Height: 842},
		},
		settings: &fakeSettings{
			defaultErr:     nil,
			setErr:         nil,
			restoreErr:     nil,
			queueErr:       nil,
			rec:            rec,
			defaultPrinter: "Office Laser",
			jobs:           []int{0, 1},
			queueCalls:     0,
		},
		shell: &fakeShell{err: nil, rec: rec},
	}
}

// writeFile creates a file with the given name in a fresh temp dir.
func writeFile(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	return path
}
