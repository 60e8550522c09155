package main

import (
	"context"
	"log"

	"teams-meeting-bridge/internal/service"
)

func main() {
	if err := service.NewApplication().Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
