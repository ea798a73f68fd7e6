package availability

import (
	"slices"
	"strings"

	"github.com/pibshift/pibshift/pkg/core/model"
)

// Layout names the metadata columns of an availability sheet.
// Header matching is done on trimmed, upper-cased text.
type Layout struct {
	NameColumns     []string `yaml:"nameColumns" validate:"required,min=1"`
	ActivityColumns []string `yaml:"activityColumns" validate:"required,min=1"`
	IgnoreColumns   []string `yaml:"ignoreColumns"`
	AvailableMarker string   `yaml:"availableMarker" validate:"required"`
}

// DefaultLayout matches the Google Forms export used by the ministry, in
// Portuguese or English
func DefaultLayout() Layout {
	return Layout{
		NameColumns:     []string{"NOME", "NAME"},
		ActivityColumns: []string{"ÁREA DE ATUAÇÃO", "ACTIVITY AREA"},
		IgnoreColumns: []string{
			"CARIMBO DE DATA/HORA",
			"ENDEREÇO DE E-MAIL",
			"CELULAR (WHATSAPP)",
			"TIMESTAMP",
			"EMAIL",
			"PHONE",
		},
		AvailableMarker: "SIM",
	}
}

func normalizeHeader(header string) string {
	return strings.ToUpper(strings.TrimSpace(header))
}

func containsHeader(candidates []string, header string) bool {
	return slices.ContainsFunc(candidates, func(candidate string) bool {
		return normalizeHeader(candidate) == header
	})
}

// ParseRows turns a header row plus data rows into an availability table.
// Every non-empty header that is not a name, activity or ignored column is a
// date label, kept in column order. Short rows are padded with empty cells
// and entirely blank rows are skipped.
func ParseRows(rows [][]string, layout Layout) (*model.AvailabilityTable, error) {
	if len(rows) == 0 {
		return nil, &ShapeError{Err: ErrEmptyInput}
	}

	nameCol, activityCol := -1, -1
	dateCols := make(map[int]string)
	table := &model.AvailabilityTable{}

	for i, raw := range rows[0] {
		header := normalizeHeader(raw)
		switch {
		case header == "":
			continue
		case containsHeader(layout.NameColumns, header):
			if nameCol == -1 {
				nameCol = i
			}
		case containsHeader(layout.ActivityColumns, header):
			if activityCol == -1 {
				activityCol = i
			}
		case containsHeader(layout.IgnoreColumns, header):
			continue
		default:
			if !slices.Contains(table.DateLabels, header) {
				table.DateLabels = append(table.DateLabels, header)
			}
			dateCols[i] = header
		}
	}

	if nameCol == -1 {
		return nil, &ShapeError{Column: firstOr(layout.NameColumns, "NAME"), Err: ErrMissingColumn}
	}
	if activityCol == -1 {
		return nil, &ShapeError{Column: firstOr(layout.ActivityColumns, "ACTIVITY AREA"), Err: ErrMissingColumn}
	}
	if len(table.DateLabels) == 0 {
		return nil, &ShapeError{Err: ErrNoDateColumns}
	}

	marker := normalizeHeader(layout.AvailableMarker)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		record := model.AvailabilityRecord{
			RawName:      strings.TrimSpace(cell(row, nameCol)),
			ActivityArea: strings.TrimSpace(cell(row, activityCol)),
			Available:    make(map[string]bool, len(table.DateLabels)),
		}
		for col, label := range dateCols {
			if normalizeHeader(cell(row, col)) == marker {
				record.Available[label] = true
			}
		}
		table.Records = append(table.Records, record)
	}

	return table, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
