package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"popin/backend/internal/config"
	"popin/backend/internal/models"
	"popin/backend/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Place{}); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	store := storage.NewService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: add-place, deactivate-place, list-places, seed")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-place":
		if len(os.Args) < 5 {
			fmt.Println("Usage: admin add-place <name> <lat> <lng> [tag ...]")
			os.Exit(1)
		}
		name := os.Args[2]
		lat, err := strconv.ParseFloat(os.Args[3], 64)
		if err != nil {
			log.Fatalf("invalid latitude: %v", err)
		}
		lng, err := strconv.ParseFloat(os.Args[4], 64)
		if err != nil {
			log.Fatalf("invalid longitude: %v", err)
		}
		place := models.Place{
			Name:      name,
			Latitude:  lat,
			Longitude: lng,
			IsActive:  true,
			Tags:      pq.StringArray(os.Args[5:]),
		}
		if err := store.SavePlace(&place); err != nil {
			log.Fatalf("failed to add place: %v", err)
		}
		fmt.Printf("Place %s created with id %s\n", place.Name, place.ID)
	case "deactivate-place":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin deactivate-place <place_id>")
			os.Exit(1)
		}
		if err := store.DeactivatePlace(os.Args[2]); err != nil {
			log.Fatalf("failed to deactivate place: %v", err)
		}
		fmt.Printf("Place %s deactivated\n", os.Args[2])
	case "list-places":
		places, err := store.ListActivePlaces()
		if err != nil {
			log.Fatalf("failed to list places: %v", err)
		}
		for _, p := range places {
			fmt.Printf("%s\t%s\t(%.5f, %.5f)\t%v\n", p.ID, p.Name, p.Latitude, p.Longitude, []string(p.Tags))
		}
	case "seed":
		if err := seedPlaces(store); err != nil {
			log.Fatalf("failed to seed places: %v", err)
		}
		fmt.Println("Demo places seeded")
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

// seedPlaces loads a handful of Yanbu venues for local development.
func seedPlaces(s storage.Storage) error {
	demo := []models.Place{
		{Name: "Corniche Cafe", Latitude: 24.0896, Longitude: 38.0618, IsActive: true, Tags: pq.StringArray{"cafe", "seafront"}},
		{Name: "Yanbu Mall", Latitude: 24.0931, Longitude: 38.0494, IsActive: true, Tags: pq.StringArray{"shopping"}},
		{Name: "Al Fairouz Beach", Latitude: 24.0712, Longitude: 38.0525, IsActive: true, Tags: pq.StringArray{"beach"}},
		{Name: "Heritage Market", Latitude: 24.0868, Longitude: 38.0583, IsActive: true, Tags: pq.StringArray{"market", "historic"}},
	}
	for i := range demo {
		if err := s.SavePlace(&demo[i]); err != nil {
			return err
		}
	}
	return nil
}
