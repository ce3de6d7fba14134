package main

import (
	"fmt"
	"os"

	"github.com/evyataryagoni/iptracker/internal/config"
	"github.com/evyataryagoni/iptracker/internal/geolocation"
)

// lookup resolves an IP address or domain from the command line
// Usage: go run ./cmd/lookup [query]
func main() {
	appConfig := config.Load()

	provider := geolocation.NewClient(geolocation.ClientConfig{
		APIKey:    appConfig.APIKey,
		LookupURL: appConfig.GeoAPIURL,
		SelfURL:   appConfig.SelfAPIURL,
		Timeout:   appConfig.LookupTimeout,
	})

	if err := newRootCmd(provider).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
