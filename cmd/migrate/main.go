package main

import (
	"errors"
	"flag"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/NFC-FC/sponsorship-hub-wiz/internal/config"
	"github.com/NFC-FC/sponsorship-hub-wiz/internal/logger"
)

func main() {
	command := flag.String("command", "up", "Migration command: up, down, or version")
	flag.Parse()

	log := logger.New("development")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", err, nil)
	}
	if cfg.Store.Driver != config.StoreDriverPostgres {
		log.Fatal("Migrations require STORE_DRIVER=postgres", nil, map[string]interface{}{
			"driver": string(cfg.Store.Driver),
		})
	}

	m, err := migrate.New("file://migrations", cfg.Store.DSN())
	if err != nil {
		log.Fatal("Failed to create migration instance", err, nil)
	}
	defer m.Close()

	switch *command {
	case "up":
		log.Info("Running migrations up", nil)
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("Migration up failed", err, nil)
		}
	case "down":
		log.Info("Running migrations down", nil)
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("Migration down failed", err, nil)
		}
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", err, nil)
		}
		log.Info("Migration version", map[string]interface{}{"version": v, "dirty": dirty})
	default:
		log.Fatal("Unknown command", nil, map[string]interface{}{"command": *command})
	}

	log.Info("Migration command completed", map[string]interface{}{"command": *command})
}
