package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/rocketcart/database/seeders"
	"github.com/shashiranjanraj/rocketcart/internal/server"
	"github.com/shashiranjanraj/rocketcart/pkg/database"
	"github.com/shashiranjanraj/rocketcart/pkg/migration"
)

// boot wires config, logging, database, cache and storage for one command.
func boot(cmd *cobra.Command) (func(), error) {
	return server.Boot(cmd.Context())
}

// rocketcart migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := boot(cmd)
		if err != nil {
			return err
		}
		defer release()

		n, err := migration.New(database.DB).Run()
		if err != nil {
			return err
		}
		fmt.Printf("Migrated: %d\n", n)
		return nil
	},
}

// rocketcart migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := boot(cmd)
		if err != nil {
			return err
		}
		defer release()

		n, err := migration.New(database.DB).Rollback()
		if err != nil {
			return err
		}
		fmt.Printf("Rolled back: %d\n", n)
		return nil
	},
}

// rocketcart migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show which migrations have run",
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := boot(cmd)
		if err != nil {
			return err
		}
		defer release()

		return migration.New(database.DB).Status(os.Stdout)
	},
}

// rocketcart seed [name...]
var seedCmd = &cobra.Command{
	Use:   "seed [seeder...]",
	Short: "Run database seeders (all when none are named)",
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := boot(cmd)
		if err != nil {
			return err
		}
		defer release()

		return seeders.Run(cmd.Context(), database.DB, args...)
	},
}
