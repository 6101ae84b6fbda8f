package main

import (
	"log"

	"github.com/aussiebroadwan/memberauth/internal/esstub/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize es stub: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("es stub error: %v", err)
	}
}
