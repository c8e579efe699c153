package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"book-catalog/internal/config"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/internal/shared/validate"
	"book-catalog/internal/web"

	authorHandler "book-catalog/internal/domains/author/handler"
	authorRepo "book-catalog/internal/domains/author/repository"
	authorService "book-catalog/internal/domains/author/service"
	bookHandler "book-catalog/internal/domains/book/handler"
	bookRepo "book-catalog/internal/domains/book/repository"
	bookService "book-catalog/internal/domains/book/service"
)

// Container holds every dependency of the application.
// Exactly one of Postgres and SQLite is set, following Config.Database.Driver.
type Container struct {
	// Infrastructure
	Config    *config.Config
	Postgres  *database.PostgresDB
	SQLite    *sql.DB
	Validator *validate.Validator

	// Repositories
	AuthorRepo authorRepo.RepositoryInterface
	BookRepo   bookRepo.RepositoryInterface

	// Services
	AuthorService     authorService.ServiceInterface
	BookService       bookService.ServiceInterface
	BulkImportService bookService.BulkImportServiceInterface

	// Handlers
	AuthorHandler     *authorHandler.AuthorHandler
	BookHandler       *bookHandler.BookHandler
	BulkImportHandler *bookHandler.BulkImportHandler
	WebHandler        *web.Handler
}

// NewContainer loads config from the environment and builds the graph
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewContainerWithConfig(cfg)
}

// NewContainerWithConfig builds the dependency graph in order:
// config → database → repositories → services → handlers.
func NewContainerWithConfig(cfg *config.Config) (*Container, error) {
	log.Info().Str("env", cfg.App.Environment).Str("driver", cfg.Database.Driver).Msg("Initializing DI container")

	c := &Container{
		Config:    cfg,
		Validator: validate.New(),
	}

	// STEP 1: database
	if err := c.initDatabase(); err != nil {
		c.Cleanup()
		return nil, err
	}

	// STEP 2: repositories
	c.initRepositories()

	// STEP 3: services
	c.initServices()

	// STEP 4: handlers
	c.initHandlers()

	log.Info().Msg("DI container initialized")
	return c, nil
}

func (c *Container) initDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch c.Config.Database.Driver {
	case config.DriverPostgres:
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		db := database.NewPostgresDB(dbConfig)
		if err := db.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.Postgres = db

		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		if c.Config.Database.AutoMigrate {
			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}

	case config.DriverSQLite:
		db, err := database.OpenSQLite(c.Config.Database.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite: %w", err)
		}
		c.SQLite = db

		if c.Config.Database.AutoMigrate {
			if err := database.MigrateSQLite(ctx, db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}

	default:
		return fmt.Errorf("unsupported database driver %q", c.Config.Database.Driver)
	}

	log.Info().Str("driver", c.Config.Database.Driver).Msg("Database ready")
	return nil
}

func (c *Container) initRepositories() {
	if c.Postgres != nil {
		c.AuthorRepo = authorRepo.NewPostgresRepository(c.Postgres.Pool)
		c.BookRepo = bookRepo.NewPostgresRepository(c.Postgres.Pool)
		return
	}
	c.AuthorRepo = authorRepo.NewSQLiteRepository(c.SQLite)
	c.BookRepo = bookRepo.NewSQLiteRepository(c.SQLite)
}

func (c *Container) initServices() {
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo, c.Validator)
	c.BookService = bookService.NewBookService(c.BookRepo, c.AuthorRepo, c.Validator)
	c.BulkImportService = bookService.NewBulkImportService(
		c.BookRepo,
		c.AuthorRepo,
		c.Validator,
		c.Config.Import.MaxRows,
	)
}

func (c *Container) initHandlers() {
	c.AuthorHandler = authorHandler.NewAuthorHandler(c.AuthorService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.BulkImportHandler = bookHandler.NewBulkImportHandler(c.BulkImportService, c.Config.Import.MaxFileSize)
	c.WebHandler = web.NewHandler(c.AuthorService, c.BookService)
}

// HealthCheck pings whichever database is configured
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.Postgres != nil {
		return c.Postgres.Ping(ctx)
	}
	if c.SQLite != nil {
		return c.SQLite.PingContext(ctx)
	}
	return fmt.Errorf("no database configured")
}

// Cleanup releases resources; called on shutdown
func (c *Container) Cleanup() {
	if c.Postgres != nil {
		_ = c.Postgres.Close()
	}
	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close sqlite")
		}
	}
	log.Info().Msg("Container cleanup completed")
}
