// Package csv reads document descriptions and creator corrections from
// RFC 4180 CSV files with a header row.
package csv

import (
	"bufio"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driving"
)

// Ensure DocumentReader implements the interface.
var _ driving.RecordSource = (*DocumentReader)(nil)

const bom = "\uFEFF"

// DocumentReader streams documents from a CSV file. The header names the
// field of each column using canonical or index names.
type DocumentReader struct {
	r      *stdcsv.Reader
	header []string
	closer io.Closer
}

// Open opens a CSV file for reading. The caller must Close the reader.
func Open(path string) (*DocumentReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	r, err := NewDocumentReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewDocumentReader reads and validates the header row from in.
func NewDocumentReader(in io.Reader) (*DocumentReader, error) {
	r := newReader(in)

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty csv", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	seen := make(map[domain.Field]bool, len(header))
	names := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		f, err := domain.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("header column %d: %w", i+1, err)
		}
		if seen[f] {
			return nil, fmt.Errorf("%w: duplicate column %q", domain.ErrInvalidInput, name)
		}
		seen[f] = true
		names[i] = name
	}
	if !seen[domain.FieldID] {
		return nil, fmt.Errorf("%w: header has no id column", domain.ErrInvalidInput)
	}

	return &DocumentReader{r: r, header: names}, nil
}

// Next returns the next document, or io.EOF after the last row.
func (d *DocumentReader) Next(ctx context.Context) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return domain.Document{}, err
	}
	row, err := d.r.Read()
	if errors.Is(err, io.EOF) {
		return domain.Document{}, io.EOF
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	line, _ := d.r.FieldPos(0)

	record := make(map[string]string, len(row))
	for i, value := range row {
		record[d.header[i]] = value
	}
	doc, err := domain.DocumentFromRecord(record)
	if err != nil {
		return domain.Document{}, fmt.Errorf("line %d: %w", line, err)
	}
	return doc, nil
}

// Close closes the underlying file, if any.
func (d *DocumentReader) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// ReadCreatorFixes reads correction rows: existing creator, new creator,
// delete flag, copy-to-description marker. The header row is skipped and
// missing trailing columns are blank. Any non-blank copy-to-description cell
// turns copying on.
func ReadCreatorFixes(in io.Reader) ([]domain.CreatorFix, error) {
	r := newReader(in)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var fixes []domain.CreatorFix
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return fixes, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		col := func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
		fixes = append(fixes, domain.CreatorFix{
			Existing:          col(0),
			Replacement:       col(1),
			Delete:            domain.ParseFlag(col(2)),
			CopyToDescription: strings.TrimSpace(col(3)) != "",
		})
	}
}

// ReadCreatorFixesFile reads correction rows from a file.
func ReadCreatorFixesFile(path string) ([]domain.CreatorFix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCreatorFixes(f)
}

// newReader returns a strict RFC 4180 reader that skips a UTF-8 byte order
// mark.
func newReader(in io.Reader) *stdcsv.Reader {
	br := bufio.NewReader(in)
	if b, err := br.Peek(len(bom)); err == nil && string(b) == bom {
		_, _ = br.Discard(len(bom))
	}
	r := stdcsv.NewReader(br)
	r.ReuseRecord = true
	return r
}
