// Package migrations embeds the schema and applies it with goose.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
)

const tableName = "schema_migrations"

//go:embed sql/*.sql
var files embed.FS

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatalf("[migrate][fatal] "+format, v...)
}

func setup() error {
	goose.SetBaseFS(files)
	goose.SetLogger(gooseLogger{})
	goose.SetTableName(tableName)
	return goose.SetDialect("postgres")
}

// Run executes a goose command ("up", "down", "status", "version", "reset")
// against db.
func Run(db *sql.DB, command string) error {
	if err := setup(); err != nil {
		return fmt.Errorf("goose setup: %w", err)
	}
	var err error
	switch command {
	case "up":
		err = goose.Up(db, "sql")
	case "down":
		err = goose.Down(db, "sql")
	case "status":
		err = goose.Status(db, "sql")
	case "version":
		err = goose.Version(db, "sql")
	case "reset":
		err = goose.Reset(db, "sql")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

// Versions lists the embedded migration versions in order.
func Versions() ([]int64, error) {
	if err := setup(); err != nil {
		return nil, err
	}
	ms, err := goose.CollectMigrations("sql", 0, goose.MaxVersion)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Version)
	}
	return out, nil
}
