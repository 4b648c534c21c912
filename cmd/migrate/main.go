// Command migrate applies the goose SQL migrations in migrations/.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
)

func main() {
	var (
		dirFlag     string
		commandFlag string
	)
	flag.StringVar(&dirFlag, "dir", "migrations", "directory containing migration files")
	flag.StringVar(&commandFlag, "command", "up", "goose command (up, down, status, version)")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(fmt.Errorf("DATABASE_URL is required"))
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		exitWithError(err)
	}

	switch commandFlag {
	case "up":
		err = goose.Up(db, dirFlag)
	case "down":
		err = goose.Down(db, dirFlag)
	case "status":
		err = goose.Status(db, dirFlag)
	case "version":
		err = goose.Version(db, dirFlag)
	default:
		err = fmt.Errorf("unsupported command %q", commandFlag)
	}
	if err != nil {
		exitWithError(err)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
