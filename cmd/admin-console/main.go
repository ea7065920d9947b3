package main

import (
	"log"
	"os"

	"pharmacy-admin-console/internal"
)

func main() {
	application, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(os.Args[1:]); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}
