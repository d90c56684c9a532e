package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"tft-meta-tracker/internal/db"
	"tft-meta-tracker/internal/meta"
)

var (
	database   *db.DB
	aggregator *meta.Aggregator
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("Loaded .env from: %s\n", path)
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		log.Println("No .env file found, using environment variables")
	}

	ctx := context.Background()

	var err error
	database, err = db.New(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	aggregator = meta.New(database)

	// API routes
	http.HandleFunc("/api/stats", handleStats)
	http.HandleFunc("/api/matches", handleRecentMatches)
	http.HandleFunc("/api/players", handlePlayers)
	http.HandleFunc("/api/meta/top", handleTopCompositions)
	http.HandleFunc("/api/meta/comp", handleCompositionDetail)
	http.HandleFunc("/api/meta/recompute", handleRecompute)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := database.DatabaseStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 50)
	region := r.URL.Query().Get("region")

	matches, err := database.GetRecentMatches(r.Context(), limit, region)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, matches)
}

func handlePlayers(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	players, err := database.ListPlayers(r.Context(), region)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, players)
}

func handleTopCompositions(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 10)
	minGames := intParam(r, "min_games", meta.DefaultMinGames)
	patch := r.URL.Query().Get("patch")
	region := r.URL.Query().Get("region")
	orderBy := r.URL.Query().Get("order_by")

	stats, err := aggregator.TopCompositions(r.Context(), limit, minGames, patch, region, orderBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, stats)
}

func handleCompositionDetail(w http.ResponseWriter, r *http.Request) {
	signature := r.URL.Query().Get("signature")
	if signature == "" {
		http.Error(w, "signature query param required", http.StatusBadRequest)
		return
	}

	detail, err := aggregator.CompositionDetail(r.Context(), signature)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if detail == nil {
		http.Error(w, "no boards found for signature", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

func handleRecompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	minGames := intParam(r, "min_games", meta.DefaultMinGames)
	patch := r.URL.Query().Get("patch")
	region := r.URL.Query().Get("region")

	stats, err := aggregator.Recompute(r.Context(), minGames, patch, region)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"updated": len(stats),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
