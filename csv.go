package main

import "strings"

// CSV parsing for the sheet export.
//
// The gviz export is not RFC 4180: quoting is per-line, rows can be short
// or long, and the header sometimes carries a BOM. encoding/csv rejects
// that kind of input, so parsing is done with a permissive scanner that
// never fails; malformed rows are padded or truncated instead.

// splitCSVLine splits one line into fields. A double quote toggles quoted
// mode, a doubled quote inside quoted mode emits a literal quote, and a
// comma outside quoted mode ends the field. An unterminated quote just
// leaves the rest of the line in the last field.
func splitCSVLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// parseCSV turns the full export payload into records keyed by the header
// row. Line endings are normalized first (the export has shipped CRLF and
// bare CR at different times), blank lines contribute nothing, short rows
// get empty strings for the missing trailing columns, and extra cells
// beyond the header are dropped.
func parseCSV(text string) []RawRecord {
	normalized := strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)
	lines := strings.Split(normalized, "\n")

	header := splitCSVLine(lines[0])
	for i, h := range header {
		header[i] = strings.ReplaceAll(strings.TrimSpace(h), "\uFEFF", "")
	}

	var rows [][]string
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitCSVLine(line))
	}
	return recordsFromRows(header, rows)
}

// recordsFromRows zips data rows against the header positionally. It is
// shared by the CSV reader and the XLSX upload path, which already has its
// rows as a cell matrix.
func recordsFromRows(header []string, rows [][]string) []RawRecord {
	var records []RawRecord
	for _, cells := range rows {
		rec := make(RawRecord, len(header))
		for i, h := range header {
			if i < len(cells) {
				rec[h] = strings.TrimSpace(cells[i])
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
