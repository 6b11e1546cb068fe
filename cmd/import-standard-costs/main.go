// Import script for the standard-cost rate card.
//
// Reads a CSV with header AREA,NATION,ROLE,DAILY_RATE and upserts each
// row into standard_costs. Usage:
//
//	go run ./cmd/import-standard-costs rates.csv
package main

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"consortium-planner-api/config"
	"consortium-planner-api/models"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("Usage: import-standard-costs <rates.csv>")
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal("Failed to open CSV:", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		log.Fatal("Failed to read CSV header:", err)
	}
	if len(header) < 4 {
		log.Fatal("Expected header AREA,NATION,ROLE,DAILY_RATE")
	}

	imported, updated, skipped := 0, 0, 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Line %d: %v", line, err)
		}

		area := strings.ToUpper(strings.TrimSpace(record[0]))
		nation := strings.ToUpper(strings.TrimSpace(record[1]))
		role := strings.ToUpper(strings.TrimSpace(record[2]))
		rate, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil || rate <= 0 || area == "" || nation == "" {
			log.Printf("Line %d: invalid row, skipping", line)
			skipped++
			continue
		}

		var existing models.StandardCost
		err = config.DB.Where("area = ? AND nation = ? AND role = ?", area, nation, role).
			First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			cost := models.StandardCost{Area: area, Nation: nation, Role: role, DailyRate: rate}
			if err := config.DB.Create(&cost).Error; err != nil {
				log.Fatalf("Line %d: failed to insert: %v", line, err)
			}
			imported++
			continue
		}
		if err != nil {
			log.Fatalf("Line %d: lookup failed: %v", line, err)
		}
		if existing.DailyRate != rate {
			if err := config.DB.Model(&existing).Update("daily_rate", rate).Error; err != nil {
				log.Fatalf("Line %d: failed to update: %v", line, err)
			}
			updated++
		}
	}

	log.Printf("Rate card import completed: %d inserted, %d updated, %d skipped", imported, updated, skipped)
}
