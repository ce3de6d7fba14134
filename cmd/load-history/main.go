package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/evyataryagoni/iptracker/internal/config"
	"github.com/evyataryagoni/iptracker/internal/store"
)

// This tool copies lookup history from the CSV file into the configured backend
// Usage: HISTORY_TYPE=redis go run cmd/load-history/main.go
func main() {
	fmt.Println("🔄 Loading lookup history...")

	// Load configuration
	appConfig := config.Load()

	historyType := strings.ToLower(strings.TrimSpace(appConfig.HistoryType))
	if historyType == "csv" || historyType == "memory" || historyType == "" {
		log.Fatalf("HISTORY_TYPE must be redis or mysql, got %q", appConfig.HistoryType)
	}

	fmt.Printf("📁 Reading history from %s...\n", appConfig.HistoryPath)
	source, err := store.NewCSVStore(appConfig.HistoryPath)
	if err != nil {
		log.Fatalf("Failed to open CSV history: %v", err)
	}
	defer source.Close()

	fmt.Printf("📡 Connecting to %s...\n", historyType)
	destination, err := store.New(store.Config{
		Type:          historyType,
		Capacity:      appConfig.HistoryLimit,
		MySQLDSN:      appConfig.MySQLDSN,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", historyType, err)
	}
	defer destination.Close()

	fmt.Printf("✅ Connected to %s\n", historyType)

	if err := warnIfPopulated(os.Stdout, destination); err != nil {
		log.Fatalf("Failed to inspect %s: %v", historyType, err)
	}

	count, err := store.Import(destination, source)
	if err != nil {
		log.Fatalf("Failed to import history: %v", err)
	}

	fmt.Printf("✅ Imported %d entries\n", count)
	fmt.Printf("\n💡 You can now start the server with HISTORY_TYPE=%s\n", historyType)
}

// warnIfPopulated tells the operator when the destination already holds
// history, since imported entries are added on top of it
func warnIfPopulated(w io.Writer, destination store.Store) error {
	emptier, ok := destination.(store.Emptier)
	if !ok {
		return nil
	}

	isEmpty, err := emptier.IsEmpty()
	if err != nil {
		return err
	}
	if !isEmpty {
		fmt.Fprintln(w, "⚠️  Destination already holds history, imported entries are added on top")
	}
	return nil
}
