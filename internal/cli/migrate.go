package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"worktrack/internal/adapters/turso"
	"worktrack/internal/infrastructure/config"
	"worktrack/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending schema migrations",
	Long: `Apply all pending schema migrations. Running with an up-to-date schema
is a no-op; every other command also migrates on start.`,
	RunE: runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current schema version",
	RunE:  runMigrateStatus,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll the schema back to a version",
	RunE:  runMigrateDown,
}

var migrateDownTo int

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntVar(&migrateDownTo, "to", 0, "Target version")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadCLI()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := turso.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := migrate.RunAll(ctx, db); err != nil {
		return err
	}

	version, _, err := migrate.GetCurrentVersion(ctx, db)
	if err != nil {
		return err
	}
	fmt.Printf("Schema at version %d\n", version)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadCLI()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := turso.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := migrate.EnsureMigrationsTable(ctx, db); err != nil {
		return err
	}
	version, dirty, err := migrate.GetCurrentVersion(ctx, db)
	if err != nil {
		return err
	}

	all, err := migrate.LoadMigrations()
	if err != nil {
		return err
	}
	latest := 0
	if len(all) > 0 {
		latest = all[len(all)-1].Version
	}

	fmt.Printf("Current version: %d (latest: %d)\n", version, latest)
	if dirty {
		fmt.Println("WARNING: schema is in a dirty state")
	}
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadCLI()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := turso.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := migrate.EnsureMigrationsTable(ctx, db); err != nil {
		return err
	}
	version, dirty, err := migrate.GetCurrentVersion(ctx, db)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("schema is in a dirty state at version %d", version)
	}

	all, err := migrate.LoadMigrations()
	if err != nil {
		return err
	}

	if err := migrate.MigrateDownTo(ctx, db, all, version, migrateDownTo); err != nil {
		return err
	}
	fmt.Printf("Schema rolled back to version %d\n", migrateDownTo)
	return nil
}
