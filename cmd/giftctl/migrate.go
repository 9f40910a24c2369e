package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var (
		databaseURL string
		source      string
		down        bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply postgres schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return fmt.Errorf("set --database-url or DATABASE_URL")
			}

			db, err := sql.Open("pgx", databaseURL)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
			if err != nil {
				return fmt.Errorf("prepare migration driver: %w", err)
			}
			m, err := migrate.NewWithDatabaseInstance("file://"+source, "pgx5", driver)
			if err != nil {
				return fmt.Errorf("load migrations from %s: %w", source, err)
			}

			if down {
				err = m.Down()
			} else {
				err = m.Up()
			}
			if errors.Is(err, migrate.ErrNoChange) {
				cmd.Println("database already up to date")
				return nil
			}
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			cmd.Println("migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "postgres connection URL (default: DATABASE_URL)")
	cmd.Flags().StringVar(&source, "migrations", "migrations", "path to the migrations directory")
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations instead of applying them")
	return cmd
}
