package audit

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies the audit schema. direction is "up" or "down".
// Already being at the target version is not an error.
func Migrate(dsnURL, direction string) error {
	if dsnURL == "" {
		return errors.New("audit: database url is required")
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("audit: direction must be up or down, got %q", direction)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("audit: migrate source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsnURL)
	if err != nil {
		return fmt.Errorf("audit: migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
