package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Default sheet wiring; overridable through the environment.
const (
	defaultSheetID   = "1_e3KhpynZI5jCDn4GBZqXwe-IpZkiE9G1L4CQ7v8HU0"
	defaultSheetName = "Hoja1"
	defaultScriptURL = "https://script.google.com/macros/s/AKfycbxtrlmsY8GPi8js1sRy87GgRfc6k5as24G5_fO2FV8GxQS7necn7vENVx1TVHnf2DUO/exec"
)

func main() {
	_ = godotenv.Load()

	sheetID := getEnvOrDefault("SHEET_ID", defaultSheetID)
	sheetName := getEnvOrDefault("SHEET_NAME", defaultSheetName)
	scriptURL := getEnvOrDefault("SCRIPT_URL", defaultScriptURL)
	corsOrigin := getEnvOrDefault("CORS_ORIGIN", "http://localhost:3001")
	port := getEnvOrDefault("PORT", "8080")

	refreshSeconds, err := strconv.Atoi(getEnvOrDefault("REFRESH_SECONDS", "5"))
	if err != nil || refreshSeconds < 1 {
		refreshSeconds = 5
	}

	store = newRecordStore()
	sheet = &sheetClient{
		csvURL:     buildCSVURL(sheetID, sheetName),
		scriptURL:  scriptURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	refresh, err = newRefresher(sheet, store, time.Duration(refreshSeconds)*time.Second)
	if err != nil {
		log.Fatal("Error creating refresher: ", err)
	}
	refresh.Start()

	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	registerRoutes(r)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	refresh.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// registerRoutes wires the API routes; shared with the test router.
func registerRoutes(r *gin.Engine) {
	r.GET("/api/records", getRecords)
	r.GET("/api/groups", getGroups)
	r.GET("/api/totals", getTotals)
	r.GET("/api/status", getStatus)
	r.POST("/api/refresh", forceRefresh)
	r.POST("/api/deliver", markDelivered)
	r.POST("/api/upload", uploadSheet)
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
