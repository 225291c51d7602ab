// Package main provides account management utilities for Atelier.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/models"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <user_id>   - Grant admin rights")
	fmt.Println("  go run ./cmd/admin demote <user_id>    - Revoke admin rights")
	fmt.Println("  go run ./cmd/admin ban <user_id>       - Ban an account")
	fmt.Println("  go run ./cmd/admin unban <user_id>     - Lift a ban")
	fmt.Println("  go run ./cmd/admin list-admins         - List all admins")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "promote":
		setAdmin(db, arg(2), true)
	case "demote":
		setAdmin(db, arg(2), false)
	case "ban":
		setBanned(db, arg(2), true)
	case "unban":
		setBanned(db, arg(2), false)
	case "list-admins":
		listAdmins(db)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func arg(i int) string {
	if len(os.Args) <= i {
		usage()
	}
	return os.Args[i]
}

func findUser(db *gorm.DB, userID string) models.User {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}
	return user
}

func setAdmin(db *gorm.DB, userID string, admin bool) {
	user := findUser(db, userID)
	if user.IsAdmin == admin {
		fmt.Printf("User %s (ID: %d) already has is_admin=%v\n", user.Username, user.ID, admin)
		return
	}

	user.IsAdmin = admin
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	verb := "promoted"
	if !admin {
		verb = "demoted"
	}
	fmt.Printf("✅ Successfully %s %s (ID: %d)\n", verb, user.Username, user.ID)
}

func setBanned(db *gorm.DB, userID string, banned bool) {
	user := findUser(db, userID)
	if user.IsBanned == banned {
		fmt.Printf("User %s (ID: %d) already has is_banned=%v\n", user.Username, user.ID, banned)
		return
	}

	user.IsBanned = banned
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	verb := "banned"
	if !banned {
		verb = "unbanned"
	}
	fmt.Printf("✅ Successfully %s %s (ID: %d)\n", verb, user.Username, user.ID)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", admin.ID, admin.Username, admin.Email)
	}
}
