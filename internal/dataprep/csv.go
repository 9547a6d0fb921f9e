package dataprep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/poolfit/poolfit/internal/domain"
	apperrors "github.com/poolfit/poolfit/internal/pkg/errors"
)

// Column aliases accepted in CSV headers. The canonical names come
// first; the rest cover common housing exports (sale price, lot area,
// neighborhood).
var (
	idColumns    = []string{"id", "row_id", "rowid"}
	priceColumns = []string{"price", "sale_price", "saleprice"}
	areaColumns  = []string{"area", "lot_area", "lotarea"}
	groupColumns = []string{"group_label", "group", "neighborhood"}
)

// ParseCSV reads raw record inputs from a headered CSV stream. The
// header must contain price, area, and group_label columns (or an
// accepted alias); the row identifier column is optional. Extra
// columns are ignored. A missing required column or an unparseable
// numeric cell is a DataError.
func ParseCSV(r io.Reader) ([]domain.RecordInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, apperrors.Data("failed to read CSV header").WithError(err)
	}

	idIdx := findColumn(headers, idColumns)
	priceIdx := findColumn(headers, priceColumns)
	areaIdx := findColumn(headers, areaColumns)
	groupIdx := findColumn(headers, groupColumns)

	var missing []string
	if priceIdx < 0 {
		missing = append(missing, "price")
	}
	if areaIdx < 0 {
		missing = append(missing, "area")
	}
	if groupIdx < 0 {
		missing = append(missing, "group_label")
	}
	if len(missing) > 0 {
		return nil, apperrors.Data(fmt.Sprintf("CSV missing required columns: %s", strings.Join(missing, ", ")))
	}

	var inputs []domain.RecordInput
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Data(fmt.Sprintf("malformed CSV row %d", rowNum)).WithError(err)
		}
		rowNum++

		price, err := parseCell(row, priceIdx, "price", rowNum)
		if err != nil {
			return nil, err
		}
		area, err := parseCell(row, areaIdx, "area", rowNum)
		if err != nil {
			return nil, err
		}

		in := domain.RecordInput{
			Price:      price,
			Area:       area,
			GroupLabel: strings.TrimSpace(row[groupIdx]),
		}
		if idIdx >= 0 && idIdx < len(row) {
			in.RowID = strings.TrimSpace(row[idIdx])
		}
		if in.RowID == "" {
			in.RowID = strconv.Itoa(rowNum - 1)
		}

		inputs = append(inputs, in)
	}

	if len(inputs) == 0 {
		return nil, apperrors.Data("CSV contains no data rows")
	}

	return inputs, nil
}

func findColumn(headers, names []string) int {
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func parseCell(row []string, idx int, column string, rowNum int) (float64, error) {
	if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return 0, apperrors.Data(fmt.Sprintf("row %d: missing %s", rowNum, column))
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
	if err != nil {
		return 0, apperrors.Data(fmt.Sprintf("row %d: %s is not numeric", rowNum, column)).WithError(err)
	}
	return v, nil
}
