// Package loader reads store and customer tables from CSV files.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var ErrMissingColumns = errors.New("missing required columns")

// table is a CSV file with a lower-cased header index.
type table struct {
	header  []string
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
	}

	t := &table{columns: make(map[string]int), rows: records[1:]}
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		t.header = append(t.header, name)
		if _, dup := t.columns[name]; !dup {
			t.columns[name] = i
		}
	}
	return t, nil
}

func openTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := readTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// column returns the index of the first alias present in the header.
func (t *table) column(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if i, ok := t.columns[a]; ok {
			return i, true
		}
	}
	return -1, false
}

func (t *table) require(required map[string][]string) (map[string]int, error) {
	out := make(map[string]int, len(required))
	var missing []string
	for key, aliases := range required {
		i, ok := t.column(aliases...)
		if !ok {
			missing = append(missing, aliases[0])
			continue
		}
		out[key] = i
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return out, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseFloat(row []string, i int, name string) (float64, error) {
	v, err := strconv.ParseFloat(field(row, i), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, field(row, i), err)
	}
	return v, nil
}

func parseInt(row []string, i int, name string) (int, error) {
	s := field(row, i)
	v, err := strconv.Atoi(s)
	if err == nil {
		return v, nil
	}
	// Some exports write integer columns as floats.
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return int(f), nil
}
