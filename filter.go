package main

import (
	"sort"
	"strings"
	"time"
)

// Filter pipeline over the raw record set. Every predicate must pass.

// FilterAll is the selector value that disables a categorical filter.
const FilterAll = "Todos"

// FilterParams is the filter configuration taken from the request.
type FilterParams struct {
	Query  string
	Estado string // Todos, Entregado, Por Entregar
	Cierre string // Todos, Activo, Cancelado
	From   *time.Time
	To     *time.Time
}

// Accepted header spellings per logical field. The sheet export has shipped
// the accented column names in several encodings over time; order matters,
// first non-empty value wins.
var (
	fechaAliases     = []string{"Fecha de entrega", "Fecha"}
	direccionAliases = []string{"DirecciÃ³n", "Dirección"}
	mapaAliases      = []string{"Ubicación de Maps", "UbicaciÃ³n de Maps", "Ubicacion de Maps"}
)

// fieldValue resolves a logical field against its accepted header aliases.
func fieldValue(r RawRecord, aliases ...string) string {
	for _, a := range aliases {
		if v := r[a]; v != "" {
			return v
		}
	}
	return ""
}

// normalizeEstado maps the raw status cell to a coarse category: a leading
// "1" means delivered, a leading "0" means pending, otherwise keyword
// containment decides, otherwise the lowercased raw value stands.
func normalizeEstado(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(s, "1"):
		return "entregado"
	case strings.HasPrefix(s, "0"):
		return "por entregar"
	case strings.Contains(s, "entregado"):
		return "entregado"
	case strings.Contains(s, "por entregar"):
		return "por entregar"
	default:
		return s
	}
}

// filterRecords returns the subsequence of records passing all configured
// predicates. Empty selector values behave like Todos.
func filterRecords(records []RawRecord, f FilterParams) []RawRecord {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	estado := f.Estado
	if estado == "" {
		estado = FilterAll
	}
	cierre := f.Cierre
	if cierre == "" {
		cierre = FilterAll
	}

	out := make([]RawRecord, 0, len(records))
	for _, r := range records {
		if query != "" && !matchesText(r, query) {
			continue
		}
		if !matchesDateRange(r, f.From, f.To) {
			continue
		}
		if !matchesEstado(r, estado) {
			continue
		}
		if !matchesCierre(r, cierre) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// matchesText checks the lowercased concatenation of all cell values for
// the query. Values are joined in key order so the result does not depend
// on map iteration order.
func matchesText(r RawRecord, query string) bool {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var joined strings.Builder
	for i, k := range keys {
		if i > 0 {
			joined.WriteByte(' ')
		}
		joined.WriteString(r[k])
	}
	return strings.Contains(strings.ToLower(joined.String()), query)
}

// matchesDateRange reads the delivery date (falling back to the generic
// date column) and compares it against the configured bounds: the lower
// bound at start of day, the upper at 23:59:59.999. A record without a
// parsable date fails whenever a bound is set.
func matchesDateRange(r RawRecord, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	d, ok := parseDateAny(fieldValue(r, fechaAliases...))
	if !ok {
		return false
	}
	if from != nil && d.Before(startOfDay(*from)) {
		return false
	}
	if to != nil && d.After(endOfDay(*to)) {
		return false
	}
	return true
}

func matchesEstado(r RawRecord, estado string) bool {
	if strings.EqualFold(estado, FilterAll) {
		return true
	}
	return strings.Contains(normalizeEstado(r["Estado"]), strings.ToLower(estado))
}

func matchesCierre(r RawRecord, cierre string) bool {
	v := strings.ToLower(strings.TrimSpace(r["Cierre"]))
	switch {
	case strings.EqualFold(cierre, FilterAll):
		return true
	case strings.EqualFold(cierre, "Cancelado"):
		return v == "cancelado"
	case strings.EqualFold(cierre, "Activo"):
		return v == ""
	default:
		return false
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999000000, t.Location())
}
