package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/shared"
)

// SetupDatabase creates the snapshot database and runs migrations.
//
// --status lists migrations without applying them; --rollback reverts the newest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Database
	r.logger.Info("initializing database", "path", cfg.Path)

	if cmd.Bool("rollback") {
		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlain("✓ Rolled back the latest migration\n")
		return r.writeMigrationStatus(db)
	}

	db, err := shared.OpenDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("status") {
		return r.writeMigrationStatus(db)
	}

	r.logger.Infof("setup complete for database: %v", cfg.Path)
	r.writePlain("✓ Database ready at %s\n", cfg.Path)
	return nil
}

func (r *Runner) writeMigrationStatus(db *sql.DB) error {
	states, err := shared.MigrationStatus(db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	r.writePlainHeader("Migrations")
	for _, s := range states {
		mark := "pending"
		if s.Applied() {
			mark = "applied " + shared.FormatTimestamp(s.AppliedAt)
		}
		r.writePlain("%04d  %-28s %s\n", s.Version, s.Name, mark)
	}
	return nil
}

// SetupConfig writes the example configuration to the config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		return fmt.Errorf("%w: no config path", shared.ErrMissingConfig)
	}

	if _, err := os.Stat(path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to replace config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat config: %w", err)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	return nil
}

// SetupAuth stores wiki API credentials taken from a cURL command copied out of the browser.
func (r *Runner) SetupAuth(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var creds *shared.CurlCredentials
	var err error
	if curlFile != "" {
		creds, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		creds, err = shared.ParseCurlCommand([]byte(curlCmd))
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	creds.Apply(&r.config.API)
	if r.config.API.BaseURL == "" && creds.URL != "" {
		r.logger.Warn("api.base_url is empty; set it to the API root of", "url", creds.URL)
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	r.logger.Info("credentials saved", "path", r.configPath, "token", creds.Token != "", "cookie", creds.Cookie != "", "headers", len(creds.Headers))
	r.writePlain("✓ Wiki credentials saved to %s\n", r.configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'correx correction pending <entity> <id>' to check access\n")
	r.writePlain("2. Run 'correx correction approve <id>' to moderate\n")
	return nil
}
