package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chrisdamba/bagsim/internal/simulator"
)

var storeCSVHeader = []string{"Restaurant", "Estimated", "Actual", "Reserved", "Sold", "Cancelled", "Waste", "Revenue", "Exposures"}

// WriteStoreCSV writes one row per store. Estimated, Actual and Reserved
// describe the final day; the other columns cover the whole run.
func WriteStoreCSV(w io.Writer, res *simulator.Result) error {
	reserved := make(map[int]int)
	if last := res.LastDay(); last != nil {
		for _, r := range last.Reservations {
			reserved[r.RestaurantID]++
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(storeCSVHeader); err != nil {
		return err
	}
	for _, r := range res.Restaurants {
		sm := storeMetrics(res.Metrics, r.ID)
		row := []string{
			r.Name,
			strconv.Itoa(r.EstimatedBags),
			strconv.Itoa(r.ActualBags),
			strconv.Itoa(reserved[r.ID]),
			strconv.Itoa(sm.BagsSold),
			strconv.Itoa(sm.BagsCancelled),
			strconv.Itoa(sm.Waste),
			strconv.FormatFloat(sm.Revenue, 'f', 2, 64),
			strconv.Itoa(sm.TimesDisplayed),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StoreCSVName is the file a strategy's store table is exported to.
func StoreCSVName(strategy string) string {
	return fmt.Sprintf("%s_results.csv", strategy)
}

// ExportStoreCSVs writes one store table per result into dir and returns the
// paths written.
func ExportStoreCSVs(dir string, results []*simulator.Result) ([]string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("error creating results dir: %w", err)
	}

	var paths []string
	for _, res := range results {
		path := filepath.Join(dir, StoreCSVName(res.Strategy))
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		if err := WriteStoreCSV(f, res); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
