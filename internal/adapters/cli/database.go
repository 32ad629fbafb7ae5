package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/solarion-go/internal/adapters/persistence"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/catalog"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/database"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := database.AutoMigrate(rt.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("✓ Schema migrated (%s)\n", rt.cfg.Database.Type)
			return nil
		},
	}
}

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the building, unit and research catalog",
		Long: `Upsert the static catalog the finishers read: buildings, units and
research items. Without --file the catalog embedded in the binary is used.

Examples:
  solarion seed
  solarion seed --file ./catalog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.Load(file)
			if err != nil {
				return err
			}

			rt, err := openRuntime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := rt.context(context.Background())
			if err := catalog.Seed(ctx, persistence.NewGormCatalogRepository(rt.db), f); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}

			fmt.Println("✓ Catalog seeded")
			fmt.Printf("  Buildings: %d\n", len(f.Buildings))
			fmt.Printf("  Units:     %d\n", len(f.Units))
			fmt.Printf("  Research:  %d\n", len(f.Research))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Catalog YAML file (default: embedded catalog)")

	return cmd
}
