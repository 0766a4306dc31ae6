package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriterSurface streams the document to a writer, typically an HTTP response whose
// client prints it on load.
type WriterSurface struct {
	W io.Writer
}

func (s WriterSurface) Print(_ context.Context, doc Document) error {
	_, err := s.W.Write(doc.HTML)
	return err
}

// FileSurface writes each document into Dir as <name>.html.
type FileSurface struct {
	Dir string
}

func (s FileSurface) Path(doc Document) string {
	return filepath.Join(s.Dir, doc.Name+".html")
}

func (s FileSurface) Print(_ context.Context, doc Document) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create print dir: %w", err)
	}
	return os.WriteFile(s.Path(doc), doc.HTML, 0o644)
}
