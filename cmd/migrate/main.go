package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"telehealth/internal/config"
	"telehealth/internal/logging"
)

const usage = "Usage: migrate [-path dir] [up|down|steps N|force V|version]"

func main() {
	path := flag.String("path", "db/migrations", "directory holding the SQL migrations")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)

	if flag.NArg() < 1 {
		fmt.Println(usage)
		os.Exit(1)
	}

	m, err := migrate.New("file://"+*path, cfg.DB.DSN())
	if err != nil {
		logger.Error("failed to create migrate instance", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	if err := run(m, flag.Args()); err != nil {
		logger.Error("migration failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
	logger.Info("migration command finished", "command", flag.Arg(0))
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return ignoreNoChange(m.Steps(n))
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(v)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number argument", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid %s argument: %w", args[0], err)
	}
	return n, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
