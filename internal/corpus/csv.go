package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"cookiegen/internal/model"
)

const defaultCSVRating = 0.5

var csvColumns = []string{"Recipe_Index", "Ingredient", "Quantity", "Unit", "Rating"}

func LoadCSV(path string, taxonomy map[string][]string) (Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return Corpus{}, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	c, err := ParseCSV(f, taxonomy)
	if err != nil {
		return Corpus{}, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return c, nil
}

// ParseCSV reads the cleaned ingredient table, one row per recipe entry. The
// input is ISO-8859-1. Rows are grouped by Recipe_Index in first-seen order;
// unparsable quantities become 0 and missing or NA ratings become 0.5.
func ParseCSV(r io.Reader, taxonomy map[string][]string) (Corpus, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Corpus{}, fmt.Errorf("%w: empty csv", ErrMalformed)
		}
		return Corpus{}, err
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range csvColumns {
		if _, ok := cols[required]; !ok {
			return Corpus{}, fmt.Errorf("%w: missing column %s", ErrMalformed, required)
		}
	}

	g := newGrouper()
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Corpus{}, err
		}
		field := func(name string) string {
			i := cols[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		g.add(field("Recipe_Index"), model.Ingredient{
			Name:   cleanName(field("Ingredient")),
			Amount: parseQuantity(field("Quantity")),
			Unit:   model.ParseUnit(field("Unit")),
			Rating: parseRating(field("Rating")),
		})
	}

	return Corpus{Recipes: g.result(), Taxonomy: taxonomy}, nil
}

func parseQuantity(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseRating(raw string) float64 {
	if raw == "" || raw == "NA" {
		return defaultCSVRating
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultCSVRating
	}
	return v
}
