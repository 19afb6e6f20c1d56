package pokemons

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidCSV is returned when the upload cannot be read as a catalog CSV
var ErrInvalidCSV = errors.New("invalid catalog CSV")

var requiredColumns = []string{"id", "name", "type1"}

// ParseCSV reads catalog rows from r. The first record is the header; columns
// are matched by name, case-insensitively. Rows that are short or have a
// non-numeric id are counted as skipped rather than failing the import.
func ParseCSV(r io.Reader) ([]*Pokemon, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("%w: file is empty", ErrInvalidCSV)
	}

	columnMap := make(map[string]int)
	for i, header := range records[0] {
		columnMap[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columnMap[strings.ToLower(col)]; !ok {
			return nil, 0, fmt.Errorf("%w: missing column %q", ErrInvalidCSV, col)
		}
	}

	var (
		items   []*Pokemon
		skipped int
	)
	for _, row := range records[1:] {
		if isBlank(row) {
			continue
		}
		if len(row) < len(records[0]) {
			skipped++
			continue
		}
		p, err := extractPokemon(row, columnMap)
		if err != nil {
			skipped++
			continue
		}
		items = append(items, p)
	}

	return items, skipped, nil
}

func extractPokemon(row []string, columnMap map[string]int) (*Pokemon, error) {
	get := func(name string) string {
		idx, ok := columnMap[strings.ToLower(name)]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	getInt := func(name string, def int) int {
		if v, err := strconv.Atoi(get(name)); err == nil {
			return v
		}
		return def
	}
	getOptional := func(name string) *string {
		if v := get(name); v != "" {
			return &v
		}
		return nil
	}

	id, err := strconv.Atoi(get("id"))
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid id %q", get("id"))
	}
	name := get("name")
	if name == "" {
		return nil, fmt.Errorf("row %d has no name", id)
	}

	return &Pokemon{
		ID:         id,
		Name:       name,
		Type1:      get("type1"),
		Type2:      getOptional("type2"),
		Total:      getInt("total", 0),
		HP:         getInt("hp", 0),
		Attack:     getInt("attack", 0),
		Defense:    getInt("defense", 0),
		SpAttack:   getInt("spAttack", 0),
		SpDefense:  getInt("spDefense", 0),
		Speed:      getInt("speed", 0),
		Generation: getInt("generation", 1),
		Legendary:  strings.EqualFold(get("legendary"), "true"),
		Image:      getOptional("image"),
		YtbURL:     getOptional("ytbUrl"),
	}, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
