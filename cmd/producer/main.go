package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/parallax/internal/app"
	"github.com/relabs-tech/parallax/internal/config"
)

func main() {
	configPath := flag.String("config", "parallax_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting parallax rotation-vector producer")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
