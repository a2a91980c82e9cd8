package main

import (
	"flag"
	"log"

	"github.com/chatstack/chat-backend/config"
	"github.com/chatstack/chat-backend/pkg/repository"

	database "github.com/chatstack/chat-backend/pkg/db"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "configuration file path")
	flag.Parse()

	if err := config.Init(configPath); err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	db := database.GetSharedConnection()
	defer database.Close(db)

	if err := repository.Migrate(db); err != nil {
		log.Fatalf("migrating schema: %v", err)
	}
	log.Println("migration completed")
}
