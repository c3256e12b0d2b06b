package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Shared state wired up in main (and swapped in tests).
var (
	store   *recordStore
	sheet   *sheetClient
	refresh *refresher
)

// parseFilterParams reads the filter configuration from query parameters.
// from/to are YYYY-MM-DD.
func parseFilterParams(c *gin.Context) (FilterParams, error) {
	f := FilterParams{
		Query:  c.Query("q"),
		Estado: c.DefaultQuery("estado", FilterAll),
		Cierre: c.DefaultQuery("cierre", FilterAll),
	}

	if from := c.Query("from"); from != "" {
		d, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid from date: %s", from)
		}
		f.From = &d
	}
	if to := c.Query("to"); to != "" {
		d, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return f, fmt.Errorf("invalid to date: %s", to)
		}
		f.To = &d
	}
	return f, nil
}

// @Summary Get raw records
// @Description Retrieve the currently published record snapshot as parsed from the sheet export
// @Tags records
// @Produce json
// @Success 200 {array} RawRecord "List of raw records"
// @Router /api/records [get]
func getRecords(c *gin.Context) {
	records, _ := store.snapshot()
	if records == nil {
		records = []RawRecord{} // Return empty array instead of null
	}
	c.JSON(http.StatusOK, records)
}

// @Summary Get client groups
// @Description Filter the record set and fold it into per-client ledgers sorted by descending debt
// @Tags groups
// @Produce json
// @Param q query string false "Free-text filter"
// @Param estado query string false "Status filter: Todos, Entregado, Por Entregar"
// @Param cierre query string false "Closure filter: Todos, Activo, Cancelado"
// @Param from query string false "Delivery date lower bound (YYYY-MM-DD)"
// @Param to query string false "Delivery date upper bound (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "groups, totals and client count"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /api/groups [get]
func getGroups(c *gin.Context) {
	f, err := parseFilterParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, _ := store.snapshot()
	groups := groupByClient(filterRecords(records, f))

	c.JSON(http.StatusOK, gin.H{
		"groups":  groups,
		"totals":  sumTotals(groups),
		"clients": len(groups),
	})
}

// @Summary Get ledger totals
// @Description Get the totals reduction over the (optionally filtered) client groups
// @Tags totals
// @Produce json
// @Success 200 {object} Totals "Ledger totals"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /api/totals [get]
func getTotals(c *gin.Context) {
	f, err := parseFilterParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, _ := store.snapshot()
	c.JSON(http.StatusOK, sumTotals(groupByClient(filterRecords(records, f))))
}

// @Summary Get fetch status
// @Description Get generation, record count and last error of the published snapshot
// @Tags status
// @Produce json
// @Success 200 {object} FetchStatus "Snapshot status"
// @Router /api/status [get]
func getStatus(c *gin.Context) {
	_, status := store.snapshot()
	c.JSON(http.StatusOK, status)
}

// @Summary Force a refresh
// @Description Run one fetch cycle immediately instead of waiting for the cadence
// @Tags status
// @Produce json
// @Success 200 {object} FetchStatus "Snapshot status after the fetch"
// @Failure 502 {object} map[string]interface{} "Sheet export unavailable"
// @Router /api/refresh [post]
func forceRefresh(c *gin.Context) {
	status, err := refresh.refreshOnce(c.Request.Context())
	if err != nil {
		log.Printf("Error refreshing sheet data: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error fetching sheet data"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// @Summary Mark a client as delivered
// @Description Proxy the mark-as-delivered action to the Apps Script endpoint. Local state is not updated; the next poll reflects the change.
// @Tags deliver
// @Accept json
// @Produce json
// @Param request body DeliverRequest true "Client name"
// @Success 200 {object} map[string]interface{} "Script message"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 502 {object} map[string]interface{} "Script call failed"
// @Router /api/deliver [post]
func markDelivered(c *gin.Context) {
	var req DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Nombre) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nombre cannot be empty"})
		return
	}

	message, err := sheet.markDelivered(c.Request.Context(), req.Nombre)
	if err != nil {
		log.Printf("Error marking %q as delivered: %v", req.Nombre, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error al actualizar"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// @Summary Upload a sheet export
// @Description Ingest a manually exported spreadsheet (.csv or .xlsx) and publish it as the current snapshot
// @Tags records
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet file"
// @Success 200 {object} map[string]interface{} "Upload successful - returns message and record count"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /api/upload [post]
func uploadSheet(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	var records []RawRecord
	if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		f, err := excelize.OpenReader(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading XLSX file"})
			return
		}
		defer f.Close()

		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil || len(rows) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading XLSX file"})
			return
		}

		headerRow := rows[0]
		for i, h := range headerRow {
			headerRow[i] = strings.ReplaceAll(strings.TrimSpace(h), "\uFEFF", "")
		}
		var dataRows [][]string
		for _, row := range rows[1:] {
			if allBlank(row) {
				continue
			}
			dataRows = append(dataRows, row)
		}
		records = recordsFromRows(headerRow, dataRows)
	} else {
		body, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading CSV file"})
			return
		}
		records = parseCSV(string(body))
	}

	gen := store.begin()
	store.publish(gen, uuid.NewString(), records)

	c.JSON(http.StatusOK, gin.H{
		"message": "Sheet uploaded successfully",
		"records": len(records),
	})
}
