package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// maxCSVRows caps the number of data rows rendered from a CSV file.
const maxCSVRows = 500

// extractCSV renders the header row prefixed "Headers:" and each data
// row as pipe-joined cells. Rendering stops after maxCSVRows data rows
// with a truncation marker.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var rows []string
	for i := 0; ; i++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse CSV: %w", err)
		}
		if i == 0 {
			rows = append(rows, "Headers: "+strings.Join(record, " | "))
		} else {
			rows = append(rows, strings.Join(record, " | "))
		}
		if i >= maxCSVRows {
			rows = append(rows, fmt.Sprintf("... (truncated, %d+ rows)", i))
			break
		}
	}

	return strings.Join(rows, "\n"), nil
}
