package main

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/lib/pq"

	"shiftops/internal/config"
)

// Applies migrations/*.sql in lexical order, each at most once. Applied
// names are tracked in schema_migrations.
func main() {
	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("db open failed: ", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		log.Fatal("schema_migrations: ", err)
	}

	dir := "migrations"
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatal("read migrations dir: ", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		if err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied); err != nil {
			log.Fatalf("check %s: %v", name, err)
		}
		if applied {
			log.Printf("skip %s (already applied)", name)
			continue
		}

		contents, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Fatalf("read %s: %v", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			log.Fatalf("begin %s: %v", name, err)
		}
		if _, err := tx.Exec(string(contents)); err != nil {
			tx.Rollback()
			log.Fatalf("apply %s: %v", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			tx.Rollback()
			log.Fatalf("record %s: %v", name, err)
		}
		if err := tx.Commit(); err != nil {
			log.Fatalf("commit %s: %v", name, err)
		}
		log.Printf("applied %s", name)
	}
}
