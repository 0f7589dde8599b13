//go:build ignore

// check_db connects with the DB_* settings, applies migrations and prints the
// catalogue row counts.
package main

import (
	"context"
	"fmt"
	"os"

	"inventory/internal/config"
	"inventory/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	if err := database.Migrate(cfg.Database, zerolog.Nop()); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	for _, table := range []string{"products", "categories"} {
		var n int
		if err := conn.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
			fmt.Fprintf(os.Stderr, "Counting %s failed: %v\n", table, err)
			os.Exit(1)
		}
		fmt.Printf("%s: %d rows\n", table, n)
	}
}
