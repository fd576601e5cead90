package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/sysid/internal/ident"
)

// WriteSeriesCSV writes equally long columns under the given header.
func WriteSeriesCSV(path string, header []string, columns ...[]float64) error {
	if len(header) != len(columns) || len(columns) == 0 {
		return ident.Dimension("write series", "%d header names for %d columns", len(header), len(columns))
	}
	n := len(columns[0])
	for _, c := range columns {
		if len(c) != n {
			return ident.Dimension("write series", "column lengths %d and %d differ", n, len(c))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for i := 0; i < n; i++ {
		for j, c := range columns {
			row[j] = strconv.FormatFloat(c[i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadSeriesCSV reads a headed CSV of numeric columns and returns them by
// header name in file order.
func ReadSeriesCSV(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: header: %w", path, err)
	}

	cols := make([][]float64, len(header))
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s:%d: column %s: %w", path, line, header[j], err)
			}
			cols[j] = append(cols[j], v)
		}
	}
	return header, cols, nil
}

// Column returns the named column of a series read by ReadSeriesCSV.
func Column(header []string, cols [][]float64, name string) ([]float64, error) {
	for i, h := range header {
		if h == name {
			return cols[i], nil
		}
	}
	return nil, fmt.Errorf("column %q not found in %v", name, header)
}
