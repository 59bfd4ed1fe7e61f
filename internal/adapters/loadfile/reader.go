package loadfile

import (
	"context"
	"driver-route-planner/internal/domain"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column names of the problem file header.
const (
	ColumnLoadNumber = "loadNumber"
	ColumnPickup     = "pickup"
	ColumnDropoff    = "dropoff"
)

var ErrMissingHeader = errors.New("loadfile: missing header")

// ParseError reports an invalid field of the problem file.
type ParseError struct {
	Line  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("loadfile: line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Record is one validated row of a problem file.
type Record struct {
	Line       int
	LoadNumber int
	Pickup     domain.Point
	Dropoff    domain.Point
}

func (r Record) Load() domain.Load {
	return domain.Load{ID: r.LoadNumber, Pickup: r.Pickup, Dropoff: r.Dropoff}
}

// ParseRecord validates raw text fields into a Record.
func ParseRecord(line int, loadNumber, pickup, dropoff string) (Record, error) {
	id, err := strconv.Atoi(strings.TrimSpace(loadNumber))
	if err != nil {
		return Record{}, &ParseError{Line: line, Field: ColumnLoadNumber, Err: err}
	}

	p, err := domain.ParsePoint(pickup)
	if err != nil {
		return Record{}, &ParseError{Line: line, Field: ColumnPickup, Err: err}
	}

	d, err := domain.ParsePoint(dropoff)
	if err != nil {
		return Record{}, &ParseError{Line: line, Field: ColumnDropoff, Err: err}
	}

	return Record{Line: line, LoadNumber: id, Pickup: p, Dropoff: d}, nil
}

// Read parses a space delimited problem file whose first line names the
// columns loadNumber, pickup and dropoff in any order.
func Read(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = ' '
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("loadfile: read header: %w", err)
	}

	cols, err := columns(compact(header))
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, 64)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loadfile: read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		fields := compact(row)
		if len(fields) == 0 {
			continue
		}
		if len(fields) != len(cols) {
			return nil, &ParseError{
				Line:  line,
				Field: "row",
				Err:   fmt.Errorf("expected %d fields, got %d", len(cols), len(fields)),
			}
		}

		rec, err := ParseRecord(line, fields[cols[ColumnLoadNumber]], fields[cols[ColumnPickup]], fields[cols[ColumnDropoff]])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

// Loads converts records to domain loads, rejecting duplicate load numbers.
func Loads(records []Record) ([]domain.Load, error) {
	seen := make(map[int]int, len(records))
	loads := make([]domain.Load, 0, len(records))
	for _, r := range records {
		if prev, ok := seen[r.LoadNumber]; ok {
			return nil, &ParseError{
				Line:  r.Line,
				Field: ColumnLoadNumber,
				Err:   fmt.Errorf("%w: %d already defined on line %d", domain.ErrDuplicateLoad, r.LoadNumber, prev),
			}
		}
		seen[r.LoadNumber] = r.Line
		loads = append(loads, r.Load())
	}
	return loads, nil
}

// ReadFile reads and converts the problem file at path.
func ReadFile(path string) ([]domain.Load, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadfile: open %q: %w", path, err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Loads(records)
}

// Repository serves loads from a problem file.
type Repository struct {
	Path string
}

func NewRepository(path string) *Repository {
	return &Repository{Path: path}
}

func (r *Repository) ListLoads(ctx context.Context) ([]domain.Load, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(r.Path)
}

// Drop empty fields produced by repeated delimiters.
func compact(fields []string) []string {
	out := fields[:0:0]
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			out = append(out, f)
		}
	}
	return out
}

func columns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}

	for _, name := range []string{ColumnLoadNumber, ColumnPickup, ColumnDropoff} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: column %q not found in %v", ErrMissingHeader, name, header)
		}
	}

	return cols, nil
}
