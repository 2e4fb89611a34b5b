package main

import (
	"flag"
	"log"

	"github.com/YuriiKoshliak/contacts-api/internal/database"
	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/YuriiKoshliak/contacts-api/internal/seed"
	"github.com/joho/godotenv"
)

func main() {
	users := flag.Int("users", 10, "number of users to create")
	contacts := flag.Int("contacts", 25, "contacts per user")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := logger.Initialize("info", "seed.log"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	seeder := seed.NewSeeder(database.DB)
	if err := seeder.SeedDev(*users, *contacts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
