package main

import (
	"os"

	"ride_notifier/internal/infra/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Errorf("Ride notifier failed: %v", err)
		os.Exit(1)
	}
}
