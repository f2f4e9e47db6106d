package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadCsvFile loads a category table: first column of every record, blank
// and duplicate entries skipped.
func ReadCsvFile(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read categories file %s: %w", filePath, err)
	}

	defer f.Close()

	csvReader := csv.NewReader(f)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s as CSV: %w", filePath, err)
	}

	seen := make(map[string]bool)
	var categories []string

	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		category := strings.TrimSpace(record[0])
		if category == "" {
			log.Debug().Strs("record", record).Msg("Skipping empty category record")
			continue
		}
		if seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}

	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories found in %s", filePath)
	}

	return categories, nil
}
