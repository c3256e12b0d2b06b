package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var testRouter *gin.Engine

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	// Set gin to test mode
	gin.SetMode(gin.TestMode)

	store = newRecordStore()
	sheet = &sheetClient{
		csvURL:     buildCSVURL("test-sheet-id", "Hoja1"),
		scriptURL:  "http://127.0.0.1:0/script",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	var err error
	refresh, err = newRefresher(sheet, store, 5*time.Second)
	if err != nil {
		log.Fatalf("Failed to create refresher: %v", err)
	}

	setupTestRouter()

	os.Exit(m.Run())
}

// setupTestRouter configures the test router with all routes
func setupTestRouter() {
	testRouter = gin.New()
	registerRoutes(testRouter)
}

// resetStore replaces the published snapshot for a clean test state
func resetStore(records []RawRecord) {
	store = newRecordStore()
	refresh.store = store
	if records != nil {
		gen := store.begin()
		store.publish(gen, uuid.NewString(), records)
	}
}

// makeRequest helper function for making HTTP requests
func makeRequest(method, url string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	testRouter.ServeHTTP(recorder, req)

	return recorder
}

// makeMultipartRequest helper function for making multipart requests (file uploads)
func makeMultipartRequest(url string, fieldName, fileName string, fileContent []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		panic(err)
	}

	part.Write(fileContent)
	writer.Close()

	req := httptest.NewRequest("POST", url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	testRouter.ServeHTTP(recorder, req)

	return recorder
}

// parseJSONResponse helper function to parse JSON response
func parseJSONResponse(recorder *httptest.ResponseRecorder, target interface{}) error {
	return json.Unmarshal(recorder.Body.Bytes(), target)
}

// assertStatusCode helper function to assert HTTP status code
func assertStatusCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected status code %d, got %d", expected, actual)
	}
}
