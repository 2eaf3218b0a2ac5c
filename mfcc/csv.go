package mfcc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes one line per frame with the coefficients in column
// order.  Values use the shortest representation that parses back exactly.
func WriteCSV(w io.Writer, m Matrix) error {
	cw := csv.NewWriter(w)
	for i, f := range m {
		rec := make([]string, len(f))
		for j, v := range f {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the output of WriteCSV.  Frames of unequal length are
// rejected with ErrRagged.
func ReadCSV(r io.Reader) (Matrix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var m Matrix
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		f := make(Frame, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("frame %d coefficient %d: %w", len(m), j, err)
			}
			f[j] = v
		}
		if len(m) > 0 && len(f) != len(m[0]) {
			return nil, fmt.Errorf("%w: frame %d has %d values, want %d", ErrRagged, len(m), len(f), len(m[0]))
		}
		m = append(m, f)
	}
	return m, nil
}
