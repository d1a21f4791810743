package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"bookcatalog/internal/app"
	"bookcatalog/internal/config"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/migrations"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, version, redo, reset, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	cfg := config.MustLoad()
	logger.Setup(cfg.LogLevel, cfg.LogJSON)

	if *command == "create" {
		if err := create(cfg.DB.Driver, *name); err != nil {
			logrus.Fatal(err)
		}
		fmt.Printf("Migration created: %s\n", *name)
		return
	}

	db, err := app.OpenDatabase(context.Background(), cfg.DB)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db.SQL, db.Dialect, *command); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}
	if *command != "status" && *command != "version" {
		fmt.Printf("Migrations %s applied successfully\n", *command)
	}
}

func create(driver, name string) error {
	if name == "" {
		return fmt.Errorf("name is required for 'create' command")
	}
	dir, err := migrationsDir(driver)
	if err != nil {
		return err
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("create migration: %w", err)
	}
	return nil
}
