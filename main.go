package main

import (
	"log"

	"webhook-gatekeeper/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
