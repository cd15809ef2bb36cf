package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/rocketcart/app/services"
	"github.com/shashiranjanraj/rocketcart/pkg/database"
	"github.com/shashiranjanraj/rocketcart/pkg/storage"
)

var diskFlag string

// rocketcart import <file>
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the catalog with a JSON file and create a fresh cart",
	Long: "Reads a JSON array of {id, name, price, quantity} from a storage disk,\n" +
		"validates every record, then deletes all products and carts and inserts\n" +
		"the new catalog with a single empty cart. A running server must be\n" +
		"restarted to pick up the new cart.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := boot(cmd)
		if err != nil {
			return err
		}
		defer release()

		disk, err := storage.Use(diskFlag)
		if err != nil {
			return err
		}
		cart, n, err := services.NewCatalogService(database.DB, nil).Import(cmd.Context(), disk, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d products, cart %s\n", n, cart.ID)
		return nil
	},
}

// rocketcart export <file>
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the catalog to a JSON file in the import format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := boot(cmd)
		if err != nil {
			return err
		}
		defer release()

		disk, err := storage.Use(diskFlag)
		if err != nil {
			return err
		}
		n, err := services.NewCatalogService(database.DB, nil).Export(cmd.Context(), disk, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d products\n", n)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{importCmd, exportCmd} {
		c.Flags().StringVar(&diskFlag, "disk", "", "storage disk: local or s3 (default STORAGE_DISK)")
	}
}
