package main

import (
	"flag"
	"log"
	"os"

	"github.com/relabs-tech/orientation_node/internal/app"
	"github.com/relabs-tech/orientation_node/internal/config"
)

func main() {
	configPath := flag.String("config", "./orientation_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting orientation monitor (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMonitor(os.Stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
