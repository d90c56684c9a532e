package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"tft-meta-tracker/internal/collector"
	"tft-meta-tracker/internal/db"
	"tft-meta-tracker/internal/ingest"
	"tft-meta-tracker/internal/riot"
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

	// Parse flags
	regions := flag.String("regions", "na1", "Comma-separated platform regions (e.g. 'na1,euw1,kr')")
	maxPlayers := flag.Int("max-players", collector.DefaultMaxPlayers, "Maximum players to track per region")
	matchesPerPlayer := flag.Int("count", collector.DefaultMatchesPerPlayer, "Matches to fetch per player")
	playersOnly := flag.Bool("players-only", false, "Only refresh the player ladder, skip matches")
	skipValidation := flag.Bool("skip-validation", false, "Skip the API key validation check")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n[Shutdown] Gracefully shutting down...")
		cancel()
	}()

	client, err := riot.NewClient()
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	if !*skipValidation {
		validator := riot.NewKeyValidator()
		valid, err := validator.ValidateKey(ctx, os.Getenv("RIOT_API_KEY"))
		if err != nil {
			log.Fatalf("Failed to validate API key: %v", err)
		}
		if !valid {
			log.Fatal("Riot API key is invalid or expired, get a new one at https://developer.riotgames.com")
		}
		fmt.Println("API key validated")
	}

	database, err := db.New(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	ingestor := ingest.New(database)
	coll := collector.New(client, database, ingestor)

	totalNew := 0
	for _, region := range strings.Split(*regions, ",") {
		region = strings.TrimSpace(strings.ToLower(region))
		if region == "" {
			continue
		}
		if !riot.IsKnownRegion(region) {
			log.Printf("Skipping unknown region %q", region)
			continue
		}

		fmt.Printf("\n=== Region %s ===\n", region)
		if _, err := coll.CollectPlayers(ctx, region, *maxPlayers); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("Player collection failed for %s: %v", region, err)
			continue
		}

		if *playersOnly {
			continue
		}

		stored, err := coll.CollectMatches(ctx, region, *maxPlayers, *matchesPerPlayer)
		totalNew += stored
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("Match collection failed for %s: %v", region, err)
		}
	}

	fmt.Printf("\nDone. %d new matches stored.\n", totalNew)
}
