// Package catalog parses catalog entries out of the file formats
// property managers actually keep their records in: CSV, XLSX
// workbooks, and YAML seed fixtures.
package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// Columns recognized in tabular imports, by header name.
var columnAliases = map[string]string{
	"entity_type": "entity_type",
	"type":        "entity_type",
	"label":       "label",
	"name":        "label",
	"id":          "id",
	"property_id": "property_id",
	"property":    "property_id",
	"space_id":    "space_id",
	"space":       "space_id",
}

// ReadCSV parses catalog entries from CSV. The first row must be a
// header naming at least entity_type and label columns.
func ReadCSV(r io.Reader, orgID string) ([]model.CatalogEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read csv header")
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var entries []model.CatalogEntry
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: read csv row %d", line+1)
		}
		line++
		entry, err := rowToEntry(row, cols, orgID)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: csv row %d", line)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ReadXLSX parses catalog entries from the first sheet of an XLSX
// workbook, with the same header convention as CSV.
func ReadXLSX(path string, orgID string) ([]model.CatalogEntry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("catalog: xlsx has no sheets")
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("catalog: xlsx sheet is empty")
	}

	cols, err := mapColumns(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	var entries []model.CatalogEntry
	for i, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if blankRow(cells) {
			continue
		}
		entry, err := rowToEntry(cells, cols, orgID)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: xlsx row %d", i+2)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// seedFile is the YAML fixture format used for dev seeding.
type seedFile struct {
	Org     string `yaml:"org"`
	Entries []struct {
		EntityType string `yaml:"entity_type"`
		Label      string `yaml:"label"`
		ID         string `yaml:"id"`
		PropertyID string `yaml:"property_id"`
		SpaceID    string `yaml:"space_id"`
	} `yaml:"entries"`
}

// ReadYAML parses a YAML seed fixture. The file's org field wins over
// the passed default when present.
func ReadYAML(path string, defaultOrg string) ([]model.CatalogEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read yaml")
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, eris.Wrap(err, "catalog: parse yaml")
	}

	orgID := seed.Org
	if orgID == "" {
		orgID = defaultOrg
	}

	entries := make([]model.CatalogEntry, 0, len(seed.Entries))
	for i, e := range seed.Entries {
		t, err := model.ParseEntityType(e.EntityType)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: yaml entry %d", i)
		}
		if strings.TrimSpace(e.Label) == "" {
			return nil, eris.Errorf("catalog: yaml entry %d has empty label", i)
		}
		entries = append(entries, model.CatalogEntry{
			OrgID:      orgID,
			EntityType: t,
			ID:         e.ID,
			Label:      e.Label,
			PropertyID: e.PropertyID,
			SpaceID:    e.SpaceID,
		})
	}
	return entries, nil
}

// mapColumns resolves header names to canonical column positions.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canon, ok := columnAliases[key]; ok {
			cols[canon] = i
		}
	}
	if _, ok := cols["entity_type"]; !ok {
		return nil, eris.New("catalog: header is missing an entity_type column")
	}
	if _, ok := cols["label"]; !ok {
		return nil, eris.New("catalog: header is missing a label column")
	}
	return cols, nil
}

func rowToEntry(row []string, cols map[string]int, orgID string) (model.CatalogEntry, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	t, err := model.ParseEntityType(cell("entity_type"))
	if err != nil {
		return model.CatalogEntry{}, err
	}
	label := cell("label")
	if label == "" {
		return model.CatalogEntry{}, eris.New("catalog: empty label")
	}

	return model.CatalogEntry{
		OrgID:      orgID,
		EntityType: t,
		ID:         cell("id"),
		Label:      label,
		PropertyID: cell("property_id"),
		SpaceID:    cell("space_id"),
	}, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		cells[i] = c.String()
	}
	return cells
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
