// Command seed imports the contacts and listings spreadsheets into the
// configured database.
//
//	go run ./cmd/seed -contacts data/contacts.csv -listings data/listings.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"realtor/app/clients"
	"realtor/app/models"
	"realtor/app/properties"
	"realtor/core/config"
	"realtor/core/database"
	"realtor/core/email"
	"realtor/core/emitter"
	"realtor/core/logger"

	"github.com/joho/godotenv"
)

func main() {
	contactsPath := flag.String("contacts", "", "contacts CSV (First Name, Last Name, Email, Tags)")
	listingsPath := flag.String("listings", "", "listings CSV (Address, City, For Type, Price, Beds, Baths, Owner/Agent, Notes)")
	flag.Parse()

	if *contactsPath == "" && *listingsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.NewConfig()

	log, err := logger.NewLogger(logger.Config{Environment: cfg.Env, Level: "info"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), cfg, log, *contactsPath, *listingsPath); err != nil {
		log.Error("Seed failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger, contactsPath, listingsPath string) error {
	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DB.AutoMigrate(&models.Client{}, &models.Property{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	em := emitter.New()

	if contactsPath != "" {
		f, err := os.Open(contactsPath)
		if err != nil {
			return err
		}
		defer f.Close()

		service := clients.NewClientService(db.DB, em, email.NewLogSender(log, cfg.EmailFrom), log, cfg.PublicBaseURL)
		res, err := service.ImportCSV(ctx, f)
		if err != nil {
			return fmt.Errorf("contacts: %w", err)
		}
		log.Info("Imported contacts",
			logger.Int("created", res.Created),
			logger.Int("updated", res.Updated),
			logger.Int("skipped", res.Skipped))
	}

	if listingsPath != "" {
		f, err := os.Open(listingsPath)
		if err != nil {
			return err
		}
		defer f.Close()

		service := properties.NewPropertyService(db.DB, em, nil, log, cfg.UploadMaxBytes)
		res, err := service.ImportCSV(ctx, f)
		if err != nil {
			return fmt.Errorf("listings: %w", err)
		}
		log.Info("Imported listings",
			logger.Int("created", res.Created),
			logger.Int("updated", res.Updated),
			logger.Int("skipped", res.Skipped))
	}

	return nil
}
