package main

import "time"

// RawRecord is one spreadsheet row keyed by header column name. All records
// from one payload share the header's key set; cells missing at the end of a
// short row are present as empty strings.
type RawRecord map[string]string

// LineItem is one order line derived from a record, with coerced amounts.
// Pago is never negative, even when the client owes more than the
// discounted amount.
type LineItem struct {
	Product  string  `json:"producto"`
	Unit     string  `json:"unidad"`
	Quantity float64 `json:"cantidad"`
	Amount   float64 `json:"monto_desc"`
	Owed     float64 `json:"debe"`
	Paid     float64 `json:"pago"`
}

// ClientGroup aggregates every line item sharing a client name, with
// running totals kept in step with the item list.
type ClientGroup struct {
	Client        string     `json:"cliente"`
	Address       string     `json:"direccion"`
	MapLink       string     `json:"mapa"`
	Phone         string     `json:"celular"`
	Status        string     `json:"estado"`
	Items         []LineItem `json:"items"`
	Total         float64    `json:"total"`
	Paid          float64    `json:"pago"`
	Debt          float64    `json:"debe"`
	QuantityTotal float64    `json:"cantidad_total"`
}

// Totals is the ledger-wide reduction over a group sequence.
type Totals struct {
	Total    float64 `json:"total"`
	Paid     float64 `json:"pago"`
	Debt     float64 `json:"debe"`
	Quantity float64 `json:"cantidad"`
}

// FetchStatus describes the currently published record snapshot.
type FetchStatus struct {
	FetchID     string     `json:"fetch_id"`
	Generation  uint64     `json:"generation"`
	RecordCount int        `json:"record_count"`
	FetchedAt   *time.Time `json:"fetched_at"`
	LastError   string     `json:"last_error,omitempty"`
}

// DeliverRequest is the body for the mark-as-delivered proxy call. The
// field name matches the Apps Script contract.
type DeliverRequest struct {
	Nombre string `json:"nombre"`
}
