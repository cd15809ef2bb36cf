// Command rocketcart runs the catalog and cart service and its maintenance
// tasks.
//
//	rocketcart migrate
//	rocketcart import catalog.json
//	rocketcart serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/rocketcart/database/migrations"
	_ "github.com/shashiranjanraj/rocketcart/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "rocketcart",
	Short:         "Catalog and single-cart reservation service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}
