// Command createadmin creates an administrator account directly against the
// database. Admin accounts cannot be created through the HTTP API, so this is
// the only way to bootstrap the first one.
//
//	go run ./cmd/createadmin -username overseer -password <secret>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/site19/containment-backend/internal/config"
	"github.com/site19/containment-backend/internal/db"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/repos"
	"github.com/site19/containment-backend/internal/services"
)

func main() {
	username := flag.String("username", "", "username for the new admin account")
	password := flag.String("password", "", "password for the new admin account")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -username <name> -password <secret>")
		os.Exit(2)
	}

	log, err := logger.New("production")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	avatarService, err := services.NewAvatarService(log, cfg.AvatarDir, cfg.AvatarFont)
	if err != nil {
		log.Fatal("Could not init AvatarService", "error", err)
	}
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, avatarService, cfg.JWTSecretKey, cfg.AccessTokenTTL)

	user, err := authService.CreateAdmin(context.Background(), *username, *password)
	if err != nil {
		log.Fatal("Could not create admin", "username", *username, "error", err)
	}
	fmt.Printf("Admin account created: %s (%s)\n", user.Username, user.ID)
}
