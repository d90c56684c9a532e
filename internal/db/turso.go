package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// TursoClient wraps a connection to Turso, used to publish meta stat
// snapshots for read-only consumers.
type TursoClient struct {
	db *sql.DB
}

// NewTursoClient creates a new Turso client
func NewTursoClient(url, authToken string) (*TursoClient, error) {
	connStr := url
	if authToken != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", url, authToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Turso: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Turso: %w", err)
	}

	return &TursoClient{db: db}, nil
}

// Close closes the Turso connection
func (c *TursoClient) Close() error {
	return c.db.Close()
}

// CreateTables creates the snapshot tables if they don't exist
func (c *TursoClient) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS data_version (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			patch TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta_stats (
			comp_signature TEXT NOT NULL,
			patch TEXT NOT NULL,
			region TEXT NOT NULL,
			play_count INTEGER NOT NULL DEFAULT 0,
			avg_placement REAL NOT NULL DEFAULT 0,
			top4_rate REAL NOT NULL DEFAULT 0,
			top1_rate REAL NOT NULL DEFAULT 0,
			last_calculated TEXT NOT NULL,
			PRIMARY KEY (comp_signature, patch, region)
		)`,
		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_meta_stats_patch_region ON meta_stats(patch, region)`,
		`CREATE INDEX IF NOT EXISTS idx_meta_stats_top4 ON meta_stats(top4_rate)`,
	}

	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// ClearData deletes all existing snapshot data
func (c *TursoClient) ClearData(ctx context.Context) error {
	tables := []string{"data_version", "meta_stats"}
	for _, table := range tables {
		if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// SetDataVersion sets the current patch version
func (c *TursoClient) SetDataVersion(ctx context.Context, patch string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO data_version (id, patch, updated_at) VALUES (1, ?, ?)`,
		patch, time.Now().UTC().Format(time.RFC3339))
	return err
}

// InsertMetaStats inserts meta stat rows in batches
func (c *TursoClient) InsertMetaStats(ctx context.Context, stats []MetaStat) error {
	const batchSize = 100

	for i := 0; i < len(stats); i += batchSize {
		end := i + batchSize
		if end > len(stats) {
			end = len(stats)
		}
		batch := stats[i:end]

		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO meta_stats (comp_signature, patch, region, play_count, avg_placement, top4_rate, top1_rate, last_calculated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			tx.Rollback()
			return err
		}

		for _, s := range batch {
			if _, err := stmt.ExecContext(ctx, s.CompSignature, s.Patch, s.Region, s.PlayCount,
				s.AvgPlacement, s.Top4Rate, s.Top1Rate,
				s.LastCalculated.UTC().Format(time.RFC3339)); err != nil {
				stmt.Close()
				tx.Rollback()
				return err
			}
		}

		stmt.Close()
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
