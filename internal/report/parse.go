package report

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/vikor/internal/vikor"
)

// ErrWorkbook is returned when an upload is a spreadsheet workbook rather than
// CSV. Workbooks laid out with a "Data" sheet and a "CriteriaInfo" sheet must
// have each sheet saved as its own CSV file before they can be parsed.
var ErrWorkbook = errors.New("input is an xlsx workbook; export the Data and CriteriaInfo sheets to CSV")

// zipMagic opens every xlsx file.
var zipMagic = []byte("PK\x03\x04")

// ParseData reads the data table: a header row, then one row per alternative
// with its label in the first column and one numeric cell per criterion.
func ParseData(r io.Reader) (vikor.DecisionMatrix, error) {
	records, err := readAll(r)
	if err != nil {
		return vikor.DecisionMatrix{}, err
	}
	if len(records) == 0 {
		return vikor.DecisionMatrix{}, &vikor.InvalidInputError{Field: "data", Row: -1, Column: -1, Reason: "table is empty"}
	}

	header := records[0]
	if len(header) < 2 {
		return vikor.DecisionMatrix{}, &vikor.InvalidInputError{Field: "data header", Row: -1, Column: -1,
			Reason: "need an alternative column and at least one criterion column"}
	}

	m := vikor.DecisionMatrix{Criteria: trimAll(header[1:])}
	for i, rec := range records[1:] {
		if len(rec) != len(header) {
			return vikor.DecisionMatrix{}, &vikor.InvalidInputError{Field: "data", Row: i, Column: -1,
				Reason: fmt.Sprintf("has %d fields, header has %d", len(rec), len(header))}
		}
		row := make([]float64, len(rec)-1)
		for j, cell := range rec[1:] {
			x, ok := parseFinite(cell)
			if !ok {
				return vikor.DecisionMatrix{}, &vikor.InvalidInputError{Field: "cell", Row: i, Column: j,
					Value: cell, Reason: "not a finite number"}
			}
			row[j] = x
		}
		m.Alternatives = append(m.Alternatives, strings.TrimSpace(rec[0]))
		m.Values = append(m.Values, row)
	}
	return m, nil
}

// ParseCriteria reads the criteria table. Columns Type and Weight are required
// and matched case-insensitively; a Criterion or Name column is optional. Rows
// align with the data columns by position.
func ParseCriteria(r io.Reader) ([]vikor.CriterionSpec, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &vikor.InvalidInputError{Field: "criteria", Row: -1, Column: -1, Reason: "table is empty"}
	}

	typeCol, weightCol, nameCol := -1, -1, -1
	for j, h := range records[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "type":
			typeCol = j
		case "weight":
			weightCol = j
		case "criterion", "name":
			nameCol = j
		}
	}
	if typeCol < 0 || weightCol < 0 {
		return nil, &vikor.InvalidInputError{Field: "criteria header", Row: -1, Column: -1,
			Reason: "columns Type and Weight are required"}
	}

	specs := make([]vikor.CriterionSpec, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(records[0]) {
			return nil, &vikor.InvalidInputError{Field: "criteria", Row: i, Column: -1,
				Reason: fmt.Sprintf("has %d fields, header has %d", len(rec), len(records[0]))}
		}
		typ, err := vikor.ParseCriterionType(rec[typeCol])
		if err != nil {
			return nil, &vikor.InvalidInputError{Field: "criterion type", Row: i, Column: typeCol,
				Value: rec[typeCol], Reason: "must be benefit or cost"}
		}
		w, ok := parseFinite(rec[weightCol])
		if !ok || w < 0 {
			return nil, &vikor.InvalidInputError{Field: "weight", Row: i, Column: weightCol,
				Value: rec[weightCol], Reason: "must be a finite number >= 0"}
		}
		spec := vikor.CriterionSpec{Type: typ, Weight: w}
		if nameCol >= 0 {
			spec.Name = strings.TrimSpace(rec[nameCol])
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func readAll(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(zipMagic)); bytes.Equal(head, zipMagic) {
		return nil, ErrWorkbook
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func parseFinite(s string) (float64, bool) {
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
