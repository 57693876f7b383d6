package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/techno-flashi/techno-flashi-sub000/internal/config"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
	"github.com/techno-flashi/techno-flashi-sub000/internal/repository/postgres"
)

type options struct {
	EnvFile     string `long:"env" default:".env" description:"Path to the env file"`
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" description:"Postgres URL, overrides the env file"`
}

type upCommand struct{}

type downCommand struct {
	Steps int `long:"steps" default:"1" description:"Number of migrations to roll back"`
}

type versionCommand struct{}

var opts options

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("up", "Apply all pending migrations", "", &upCommand{})
	parser.AddCommand("down", "Roll back migrations", "", &downCommand{})
	parser.AddCommand("version", "Print the current schema version", "", &versionCommand{})

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

func openMigrator() (*postgres.Migrator, error) {
	url := opts.DatabaseURL
	if url == "" {
		cfg, err := config.Load(opts.EnvFile)
		if err != nil {
			return nil, err
		}
		url = cfg.Database.URL
	}
	return postgres.NewMigrator(url)
}

func (c *upCommand) Execute([]string) error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Get().Info("Migrations applied", "version", version, "dirty", dirty)
	return nil
}

func (c *downCommand) Execute([]string) error {
	if c.Steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}

	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(c.Steps); err != nil {
		return err
	}
	logger.Get().Info("Migrations rolled back", "steps", c.Steps)
	return nil
}

func (c *versionCommand) Execute([]string) error {
	m, err := openMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	fmt.Printf("version=%d dirty=%t\n", version, dirty)
	return nil
}
