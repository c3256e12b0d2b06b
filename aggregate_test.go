package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByClient(t *testing.T) {
	t.Run("folds a client's rows into one group with running totals", func(t *testing.T) {
		records := parseCSV("Nombre,Pedido,Unidad,Cantidad,Monto Descontado,Debe,Estado,Cierre\n" +
			"Ana,Miel,frasco,2,10.00,5.00,0,\n" +
			"Ana,Tortillas,docena,3,20.00,0.00,0,\n" +
			"Luis,Pan,bolsa,1,8.00,0.00,1,\n")

		groups := groupByClient(records)
		require.Len(t, groups, 2)

		ana := groups[0]
		assert.Equal(t, "Ana", ana.Client)
		require.Len(t, ana.Items, 2)
		assert.InDelta(t, 30.00, ana.Total, 1e-9)
		assert.InDelta(t, 5.00, ana.Debt, 1e-9)
		assert.InDelta(t, 25.00, ana.Paid, 1e-9)
		assert.InDelta(t, 5, ana.QuantityTotal, 1e-9)

		// Ana owes money, so she sorts ahead of Luis.
		assert.Equal(t, "Luis", groups[1].Client)
		assert.InDelta(t, 0, groups[1].Debt, 1e-9)
	})

	t.Run("payment never goes negative", func(t *testing.T) {
		groups := groupByClient([]RawRecord{
			{"Nombre": "Ana", "Monto Descontado": "10.00", "Debe": "15.00"},
		})

		require.Len(t, groups, 1)
		require.Len(t, groups[0].Items, 1)
		assert.InDelta(t, 0, groups[0].Items[0].Paid, 1e-9)
		assert.InDelta(t, 0, groups[0].Paid, 1e-9)
		assert.InDelta(t, 15.00, groups[0].Debt, 1e-9)
	})

	t.Run("blank name falls back to the sentinel", func(t *testing.T) {
		groups := groupByClient([]RawRecord{
			{"Nombre": "  ", "Pedido": "Miel"},
		})

		require.Len(t, groups, 1)
		assert.Equal(t, noNameClient, groups[0].Client)
	})

	t.Run("blank product falls back to a dash", func(t *testing.T) {
		groups := groupByClient([]RawRecord{{"Nombre": "Ana"}})

		require.Len(t, groups, 1)
		assert.Equal(t, "-", groups[0].Items[0].Product)
	})

	t.Run("contact fields backfill independently, first writer wins", func(t *testing.T) {
		groups := groupByClient([]RawRecord{
			{"Nombre": "Ana", "Celular": "", "Dirección": "Av. Sol 123", "Estado": ""},
			{"Nombre": "Ana", "Celular": "999888777", "Dirección": "Otra 456", "Ubicacion de Maps": "https://maps.app/x", "Estado": "1"},
			{"Nombre": "Ana", "Celular": "111222333", "Ubicacion de Maps": "https://maps.app/y"},
		})

		require.Len(t, groups, 1)
		g := groups[0]
		assert.Equal(t, "Av. Sol 123", g.Address)    // first non-empty kept
		assert.Equal(t, "999888777", g.Phone)        // later value never overwrites
		assert.Equal(t, "https://maps.app/x", g.MapLink)
		assert.Equal(t, "1", g.Status)
	})

	t.Run("equal debt keeps first-appearance order", func(t *testing.T) {
		groups := groupByClient([]RawRecord{
			{"Nombre": "Rosa", "Monto Descontado": "5.00", "Debe": "0"},
			{"Nombre": "Ana", "Monto Descontado": "7.00", "Debe": "0"},
			{"Nombre": "Luis", "Monto Descontado": "3.00", "Debe": "2.00"},
		})

		require.Len(t, groups, 3)
		assert.Equal(t, "Luis", groups[0].Client)
		assert.Equal(t, "Rosa", groups[1].Client)
		assert.Equal(t, "Ana", groups[2].Client)
	})

	t.Run("quantity uses the separator heuristic", func(t *testing.T) {
		groups := groupByClient([]RawRecord{
			{"Nombre": "Ana", "Cantidad": "1.234"},
		})

		require.Len(t, groups, 1)
		assert.InDelta(t, 1234, groups[0].Items[0].Quantity, 1e-9)
	})
}

func TestSumTotals(t *testing.T) {
	records := []RawRecord{
		{"Nombre": "Ana", "Cantidad": "2", "Monto Descontado": "10.00", "Debe": "5.00"},
		{"Nombre": "Ana", "Cantidad": "3", "Monto Descontado": "20.00", "Debe": "0"},
		{"Nombre": "Luis", "Cantidad": "1", "Monto Descontado": "8.00", "Debe": "8.00"},
	}
	groups := groupByClient(records)
	totals := sumTotals(groups)

	t.Run("matches the independent sum over all line items", func(t *testing.T) {
		var total, paid, debt, quantity float64
		for _, g := range groups {
			for _, it := range g.Items {
				total += it.Amount
				paid += it.Paid
				debt += it.Owed
				quantity += it.Quantity
			}
		}

		assert.InDelta(t, total, totals.Total, 1e-9)
		assert.InDelta(t, paid, totals.Paid, 1e-9)
		assert.InDelta(t, debt, totals.Debt, 1e-9)
		assert.InDelta(t, quantity, totals.Quantity, 1e-9)
	})

	t.Run("empty group list sums to zero", func(t *testing.T) {
		assert.Equal(t, Totals{}, sumTotals(nil))
	})
}

func TestPipelineIdempotence(t *testing.T) {
	payload := "Nombre,Pedido,Unidad,Cantidad,Monto Descontado,Debe,Estado,Cierre\n" +
		"Ana,Miel,frasco,2,10.00,5.00,0,\n" +
		"Rosa,Pan,bolsa,1,4.50,4.50,0,\n" +
		"Ana,Tortillas,docena,3,20.00,0.00,1,\n"

	first := groupByClient(filterRecords(parseCSV(payload), FilterParams{}))
	second := groupByClient(filterRecords(parseCSV(payload), FilterParams{}))

	assert.Equal(t, first, second)
	assert.Equal(t, sumTotals(first), sumTotals(second))
}
