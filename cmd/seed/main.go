package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jessevdk/go-flags"
	"github.com/techno-flashi/techno-flashi-sub000/internal/config"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
	"github.com/techno-flashi/techno-flashi-sub000/internal/repository/postgres"
	"github.com/techno-flashi/techno-flashi-sub000/internal/seed"
)

type options struct {
	File     string `short:"f" long:"file" required:"true" description:"YAML file with ad definitions"`
	EnvFile  string `long:"env" default:".env" description:"Path to the env file"`
	Truncate bool   `long:"truncate" description:"Delete all existing ads (and their events) first"`
	DryRun   bool   `long:"dry-run" description:"Validate the file without writing"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	log := logger.Get()

	f, err := os.Open(opts.File)
	if err != nil {
		log.Error("Failed to open seed file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	ads, err := seed.Parse(f)
	if err != nil {
		log.Error("Seed file rejected", "error", err)
		os.Exit(1)
	}

	if opts.DryRun {
		log.Info("Seed file is valid", "ads", len(ads))
		return
	}

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := postgres.NewAdRepository(pool)

	if opts.Truncate {
		if err := repo.Truncate(ctx); err != nil {
			log.Error("Failed to truncate ads", "error", err)
			os.Exit(1)
		}
		log.Info("Existing ads removed")
	}

	if err := repo.CreateBatch(ctx, ads); err != nil {
		log.Error("Failed to insert ads", "error", err)
		os.Exit(1)
	}

	for _, ad := range ads {
		log.Info("Seeded ad", "id", ad.ID, "name", ad.Name, "position", ad.Position)
	}
	log.Info("Seeding completed", "ads", len(ads))
}
