package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Clients for the two external endpoints: the Google Sheets CSV export
// (read) and the Apps Script mark-as-delivered endpoint (write).

// buildCSVURL returns the gviz CSV export URL for a sheet.
func buildCSVURL(sheetID, sheetName string) string {
	base := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv", sheetID)
	if sheetName != "" {
		base += "&sheet=" + url.QueryEscape(sheetName)
	}
	return base
}

type sheetClient struct {
	csvURL     string
	scriptURL  string
	httpClient *http.Client
}

// fetchRecords downloads and parses the current export. A cacheBust
// timestamp is appended on every request so intermediary caches never
// serve a stale payload. Any non-2xx response is a fetch failure.
func (c *sheetClient) fetchRecords(ctx context.Context) ([]RawRecord, error) {
	u := c.csvURL
	if strings.Contains(u, "?") {
		u += "&"
	} else {
		u += "?"
	}
	u += "cacheBust=" + strconv.FormatInt(time.Now().UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building sheet request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching sheet export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sheet export returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading sheet export: %w", err)
	}
	return parseCSV(string(body)), nil
}

// markDelivered posts the client name to the Apps Script endpoint and
// returns the script's message. The script reports errors in the body
// rather than the status code, so only network and non-JSON failures are
// errors here. One shot, no retry; the next poll picks up the result.
func (c *sheetClient) markDelivered(ctx context.Context, nombre string) (string, error) {
	payload, err := json.Marshal(DeliverRequest{Nombre: nombre})
	if err != nil {
		return "", fmt.Errorf("encoding deliver request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building deliver request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting deliver request: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding deliver response: %w", err)
	}
	if out.Message == "" {
		out.Message = "Actualizado"
	}
	return out.Message, nil
}
