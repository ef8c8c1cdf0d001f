// cmd/dbtools/migrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tarunkumar2005/fomi/internal/config"
	"github.com/tarunkumar2005/fomi/internal/db"
)

func main() {
	var (
		configPath = flag.String("config", "config/app.yaml", "Path to the YAML configuration file")
		dbPath     = flag.String("db", "", "Path to a SQLite database; overrides the configured database")
		command    = flag.String("command", "", "Command to run (up, down, version, steps, force)")
		arg        = flag.String("n", "", "Step count for steps, version for force")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath, *dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	m, err := db.NewMigrator(conn)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration init failed")
	}
	defer m.Close()

	if err := run(m, *command, *arg); err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("Migration failed")
	}
}

// loadConfig reads the config file, or builds a bare SQLite config when dbPath is set.
func loadConfig(path, dbPath string) (*config.Config, error) {
	if dbPath != "" {
		cfg := config.Default()
		cfg.Database.Driver = "sqlite"
		cfg.Database.Filename = dbPath
		return cfg, nil
	}
	return config.Load(path)
}

func run(m *migrate.Migrate, command, arg string) error {
	switch command {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		n, err := strconv.Atoi(arg)
		if err != nil || n == 0 {
			return fmt.Errorf("steps needs a non-zero -n")
		}
		return ignoreNoChange(m.Steps(n))
	case "force":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("force needs a version in -n")
		}
		return m.Force(v)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("Version: none")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
