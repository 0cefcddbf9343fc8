package sheets

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxCellChars keeps each chunk below the 50,000 character cap Sheets puts
// on a single cell.
const maxCellChars = 40000

// entry is a key's row: the 1-based sheet row, its joined value and how many
// cells the row currently spans.
type entry struct {
	row   int
	value string
	cells int
}

// findKey returns the row holding key. Values longer than one cell continue
// in the cells to the right of column B.
func findKey(values [][]interface{}, key string) (entry, bool) {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(cell(row, 0)) != key {
			continue
		}
		return entry{row: i + 1, value: joinCells(row[1:]), cells: len(row)}, true
	}
	return entry{}, false
}

func joinCells(cells []interface{}) string {
	var b strings.Builder
	for i := range cells {
		b.WriteString(cell(cells, i))
	}
	return b.String()
}

// splitValue cuts value into chunks of at most size characters without
// splitting a rune. An empty value is a single empty chunk.
func splitValue(value string, size int) []string {
	if value == "" {
		return []string{""}
	}
	var chunks []string
	for value != "" {
		end, n := 0, 0
		for end < len(value) && n < size {
			_, w := utf8.DecodeRuneInString(value[end:])
			end += w
			n++
		}
		chunks = append(chunks, value[:end])
		value = value[end:]
	}
	return chunks
}

// rowValues lays key and value out as one row, padded with blanks so cells
// left over from a longer previous value are cleared.
func rowValues(key, value string, prevCells int) []interface{} {
	chunks := splitValue(value, maxCellChars)
	row := make([]interface{}, 0, max(prevCells, len(chunks)+1))
	row = append(row, key)
	for _, c := range chunks {
		row = append(row, c)
	}
	for len(row) < prevCells {
		row = append(row, "")
	}
	return row
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return fmt.Sprint(row[idx])
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!%d:%d", sheet, row, row)
}
