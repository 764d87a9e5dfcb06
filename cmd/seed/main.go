package main

import (
	"context"
	"log"

	"github.com/arcanewagers/Auth/internal/auth"
	"github.com/arcanewagers/Auth/internal/config"
	"github.com/arcanewagers/Auth/internal/db"
	"github.com/arcanewagers/Auth/internal/model"
	"github.com/arcanewagers/Auth/internal/repository"
)

// Seeds a pair of development users: one active, one suspended (for testing
// the status check on login).
func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.User{}, &model.LoginAttempt{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	users := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	seed := []struct {
		email    string
		username string
		status   model.UserStatus
	}{
		{"demo@example.com", "demo", model.StatusActive},
		{"suspended@example.com", "suspended-demo", model.StatusSuspended},
	}

	for _, s := range seed {
		if existing, err := users.FindByEmail(ctx, s.email); err == nil && existing != nil {
			log.Printf("skip %s: already present", s.email)
			continue
		}
		hashed, err := auth.HashPassword("Demo123!pass")
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		user := &model.User{
			Email:          s.email,
			Username:       s.username,
			HashedPassword: hashed,
			IsActive:       s.status == model.StatusActive,
			Status:         s.status,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("seed %s: %v", s.email, err)
		}
		log.Printf("seeded %s (%s)", s.email, s.status)
	}
}
