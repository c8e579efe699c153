package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"book-catalog/internal/config"
	"book-catalog/pkg/container"
	"book-catalog/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Administer the book catalog database",
	Long: `catalogctl runs maintenance tasks against the configured catalog store.

The database is selected the same way as the API server (DB_DRIVER,
SQLITE_PATH, DB_HOST, ...), and a .env file in the working directory
is honoured.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logger.Init(os.Getenv("APP_ENV"), logLevel)
	},
}

var logLevel string

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "zerolog level")
	rootCmd.AddCommand(migrateCmd, importCmd, exportCmd)
}

// openContainer loads config and builds the container; migrations run
// only when migrate is set or DB_AUTO_MIGRATE is on.
func openContainer(migrate bool) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if migrate {
		cfg.Database.AutoMigrate = true
	}
	return container.NewContainerWithConfig(cfg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
