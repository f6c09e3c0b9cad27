package report

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes one table with its header row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	for i, row := range t.Values {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, t.Alternatives[i])
		for _, x := range row {
			rec = append(rec, strconv.FormatFloat(x, 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteZip writes every table as <name>.csv into one zip archive.
func (r *Report) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, t := range r.Tables() {
		f, err := zw.Create(t.Name + ".csv")
		if err != nil {
			return fmt.Errorf("create %s: %w", t.Name, err)
		}
		if err := WriteCSV(f, t); err != nil {
			return fmt.Errorf("write %s: %w", t.Name, err)
		}
	}
	return zw.Close()
}
