package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "mindstashctl",
		Short: "CLI client for the mindstash capture service REST API",
	}
)

func main() {
	_ = godotenv.Load()

	defaultAPI := os.Getenv("MINDSTASH_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", defaultAPI, "Capture service base URL")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
