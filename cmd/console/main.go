package main

import (
	"tb-intake/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	app, err := bootstrap.NewConsole()
	if err != nil {
		logrus.Fatalf("Failed to initialize console: %v", err)
	}

	if err := app.Run(); err != nil {
		logrus.Fatalf("Console stopped: %v", err)
	}
}
