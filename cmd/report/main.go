package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tft-meta-tracker/internal/db"
	"tft-meta-tracker/internal/meta"
	"tft-meta-tracker/internal/staticdata"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	update := flag.Bool("update", false, "Recompute aggregates before reporting")
	top := flag.Int("top", 10, "Number of compositions to show")
	minGames := flag.Int("min-games", meta.DefaultMinGames, "Minimum games for a composition to rank")
	patch := flag.String("patch", "", "Restrict to one patch (e.g. '13.24', empty = all)")
	region := flag.String("region", "", "Restrict to one region (e.g. 'na1', empty = all)")
	orderBy := flag.String("order-by", meta.DefaultOrderBy, "Ranking metric: top4_rate, top1_rate, play_count, avg_placement")
	compSig := flag.String("comp", "", "Show the detail view for one composition signature")
	pruneDays := flag.Int("prune-days", 0, "Delete matches older than N days before reporting (0 = keep all)")
	pruneStale := flag.Duration("prune-stale", 0, "Delete aggregates not refreshed within this duration (0 = keep all)")
	pushTurso := flag.Bool("push-turso", false, "Publish the aggregate snapshot to Turso after reporting")
	flag.Parse()

	ctx := context.Background()

	database, err := db.New(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	aggregator := meta.New(database)

	if *pruneDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -*pruneDays)
		deleted, err := database.DeleteMatchesOlderThan(ctx, cutoff)
		if err != nil {
			log.Fatalf("Failed to prune old matches: %v", err)
		}
		fmt.Printf("Pruned %d matches older than %d days\n", deleted, *pruneDays)
	}

	if *update {
		fmt.Println("Recomputing aggregates...")
		stats, err := aggregator.Recompute(ctx, *minGames, *patch, *region)
		if err != nil {
			log.Fatalf("Failed to recompute: %v", err)
		}
		fmt.Printf("Updated %d aggregates\n", len(stats))
	}

	if *pruneStale > 0 {
		deleted, err := database.PruneStaleStats(ctx, time.Now().Add(-*pruneStale))
		if err != nil {
			log.Fatalf("Failed to prune stale aggregates: %v", err)
		}
		fmt.Printf("Pruned %d stale aggregates\n", deleted)
	}

	if *compSig != "" {
		printDetail(ctx, aggregator, *compSig)
		return
	}

	stats, err := aggregator.TopCompositions(ctx, *top, *minGames, *patch, *region, *orderBy)
	if err != nil {
		log.Fatalf("Failed to rank compositions: %v", err)
	}
	printRanking(ctx, database, stats, *patch, *region, *orderBy)

	if *pushTurso {
		pushSnapshot(ctx, database, *patch)
	}
}

func printRanking(ctx context.Context, database *db.DB, stats []db.MetaStat, patch, region, orderBy string) {
	scope := "all patches"
	if patch != "" {
		scope = "patch " + patch
	}
	if region != "" {
		scope += ", " + strings.ToUpper(region)
	}

	fmt.Printf("\n=== Top Compositions (%s, by %s) ===\n\n", scope, orderBy)
	if len(stats) == 0 {
		fmt.Println("No compositions meet the sample threshold yet.")
		return
	}

	fmt.Printf("%-4s %-52s %7s %7s %7s %9s\n", "#", "Composition", "Games", "Top4%", "Win%", "AvgPlace")
	fmt.Println(strings.Repeat("-", 90))
	for i, s := range stats {
		sig := s.CompSignature
		if len(sig) > 50 {
			sig = sig[:47] + "..."
		}
		fmt.Printf("%-4d %-52s %7d %6.1f%% %6.1f%% %9.2f\n",
			i+1, sig, s.PlayCount, s.Top4Rate*100, s.Top1Rate*100, s.AvgPlacement)
	}

	dbStats, err := database.DatabaseStats(ctx)
	if err == nil {
		fmt.Printf("\n%d matches / %d boards across %d tracked players\n",
			dbStats.TotalMatches, dbStats.TotalCompositions, dbStats.TotalPlayers)
	}
}

func printDetail(ctx context.Context, aggregator *meta.Aggregator, signature string) {
	detail, err := aggregator.CompositionDetail(ctx, signature)
	if err != nil {
		log.Fatalf("Failed to load composition detail: %v", err)
	}
	if detail == nil {
		fmt.Printf("No boards found for %q\n", signature)
		return
	}

	// Resolve display names; on failure the raw API identifiers still print.
	cacheDir := os.Getenv("STATIC_DATA_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = ".cache"
	}
	names := staticdata.New(staticdata.HTTPFetch(), cacheDir)
	if err := names.Load(ctx); err != nil {
		log.Printf("Static data unavailable, showing raw identifiers: %v", err)
	}

	fmt.Printf("\n=== %s ===\n", detail.Signature)
	fmt.Printf("Samples: %d  Avg placement: %.2f\n", detail.SampleCount, detail.AvgPlacement)
	fmt.Println("\nCore units:")
	for _, u := range detail.TopUnits {
		fmt.Printf("  %-40s %d copies across %d boards\n",
			names.ChampionName(u.Name), u.Count, detail.SampleCount)
	}
	if len(detail.TopAugments) > 0 {
		fmt.Println("\nCommon augments:")
		for _, a := range detail.TopAugments {
			fmt.Printf("  %-40s %d boards\n", names.ItemName(a.Name), a.Count)
		}
	}
}

func pushSnapshot(ctx context.Context, database *db.DB, patch string) {
	url := os.Getenv("TURSO_DATABASE_URL")
	if url == "" {
		log.Fatal("TURSO_DATABASE_URL not set")
	}
	token := os.Getenv("TURSO_AUTH_TOKEN")

	turso, err := db.NewTursoClient(url, token)
	if err != nil {
		log.Fatalf("Failed to connect to Turso: %v", err)
	}
	defer turso.Close()

	// Export everything stored, not just the printed page.
	stats, err := database.TopMetaStats(ctx, 100000, 1, "", "", "play_count")
	if err != nil {
		log.Fatalf("Failed to load aggregates for export: %v", err)
	}

	if err := turso.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create Turso tables: %v", err)
	}
	if err := turso.ClearData(ctx); err != nil {
		log.Fatalf("Failed to clear Turso data: %v", err)
	}
	if err := turso.InsertMetaStats(ctx, stats); err != nil {
		log.Fatalf("Failed to push aggregates: %v", err)
	}
	version := patch
	if version == "" {
		version = "all"
	}
	if err := turso.SetDataVersion(ctx, version); err != nil {
		log.Fatalf("Failed to set data version: %v", err)
	}
	fmt.Printf("Pushed %d aggregates to Turso\n", len(stats))
}
