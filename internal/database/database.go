package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var db *sql.DB

// Config holds the database connection settings.
type Config struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SchemaPath string // optional; when set the schema file is applied on startup
}

// InitDB opens the connection pool, verifies it and optionally applies the
// schema file.
func InitDB(cfg Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if cfg.SchemaPath != "" {
		if err = applySchema(conn, cfg.SchemaPath); err != nil {
			return nil, err
		}
	}

	db = conn
	return db, nil
}

// applySchema reads and executes a SQL schema file.
func applySchema(conn *sql.DB, schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}
	if _, err = conn.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	return nil
}

// GetDB returns the database connection pool.
func GetDB() *sql.DB {
	return db
}
