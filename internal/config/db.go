package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Steven-zx/Grove-Web-Application-sub001/internal/storage"
)

// Deps holds the process-wide collaborators, built once at startup and
// passed explicitly into the router and handlers.
type Deps struct {
	Env   Env
	DB    *sql.DB
	Blobs storage.BlobStore
}

// ConnectDB opens the shared Postgres pool and verifies it with a ping.
func ConnectDB(env Env) (*sql.DB, error) {
	db, err := sql.Open("pgx", env.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
