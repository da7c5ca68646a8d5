package shoplist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Header is the first line of every text export.
const Header = "Необходимые продукты:"

// csvHeaders defines the column names written as the first row of a CSV export.
var csvHeaders = []string{"name", "measurement_unit", "amount"}

// Render formats l as a plain-text document: the header line followed by
// one "name (unit) — amount" line per item, sorted as Items sorts them.
// Every line, including the last, ends with "\n".
func Render(l List) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, it := range l.Items() {
		fmt.Fprintf(&b, "%s (%s) — %d\n", it.Name, it.MeasurementUnit, it.Amount)
	}
	return b.String()
}

// RenderCSV formats l as CSV with a header row, in the same order as Render.
func RenderCSV(l List) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("shoplist.RenderCSV: %w", err)
	}
	for _, it := range l.Items() {
		if err := w.Write([]string{csvSafe(it.Name), csvSafe(it.MeasurementUnit), strconv.Itoa(it.Amount)}); err != nil {
			return nil, fmt.Errorf("shoplist.RenderCSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("shoplist.RenderCSV: %w", err)
	}
	return buf.Bytes(), nil
}

// csvSafe prefixes cells that spreadsheet applications would evaluate as a
// formula with a single quote, so they open as literal text.
func csvSafe(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
