package main

import (
	"sort"
	"strings"
)

// Aggregation of filtered records into per-client ledgers.

// noNameClient keys records whose name cell is blank.
const noNameClient = "(Sin nombre)"

// groupByClient folds records into client groups in insertion order: the
// first record for a client creates its group, every record appends a line
// item and adds into the running totals. Contact fields are backfilled
// independently, first non-empty value wins. The result is sorted by
// descending debt; clients with equal debt keep first-appearance order.
func groupByClient(records []RawRecord) []*ClientGroup {
	byClient := make(map[string]*ClientGroup)
	var groups []*ClientGroup

	for _, r := range records {
		client := strings.TrimSpace(r["Nombre"])
		if client == "" {
			client = noNameClient
		}

		item := lineItemFromRecord(r)

		g, ok := byClient[client]
		if !ok {
			g = &ClientGroup{Client: client, Items: []LineItem{}}
			byClient[client] = g
			groups = append(groups, g)
		}

		g.Items = append(g.Items, item)
		g.Total += item.Amount
		g.Debt += item.Owed
		g.Paid += item.Paid
		g.QuantityTotal += item.Quantity

		backfill(&g.Address, fieldValue(r, direccionAliases...))
		backfill(&g.MapLink, strings.TrimSpace(fieldValue(r, mapaAliases...)))
		backfill(&g.Phone, r["Celular"])
		backfill(&g.Status, strings.ToLower(r["Estado"]))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Debt > groups[j].Debt
	})
	return groups
}

// lineItemFromRecord derives one order line. Quantity goes through the
// separator heuristic, the money columns through the stripped money path.
func lineItemFromRecord(r RawRecord) LineItem {
	product := strings.TrimSpace(r["Pedido"])
	if product == "" {
		product = "-"
	}

	amount := moneyNum(r["Monto Descontado"])
	owed := moneyNum(r["Debe"])
	paid := amount - owed
	if paid < 0 {
		paid = 0
	}

	return LineItem{
		Product:  product,
		Unit:     strings.TrimSpace(r["Unidad"]),
		Quantity: toNum(r["Cantidad"]),
		Amount:   amount,
		Owed:     owed,
		Paid:     paid,
	}
}

// backfill assigns v only when the current value is empty and v is not.
func backfill(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

// sumTotals reduces the already-summed group fields, so it cannot drift
// from the per-group running totals.
func sumTotals(groups []*ClientGroup) Totals {
	var t Totals
	for _, g := range groups {
		t.Total += g.Total
		t.Paid += g.Paid
		t.Debt += g.Debt
		t.Quantity += g.QuantityTotal
	}
	return t
}
