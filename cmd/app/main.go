package main

import (
	"log"

	"yousum/internal/bootstrap"
)

// main runs the window against ./frontend on disk, for frontend development.
func main() {
	app, err := bootstrap.New()
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
