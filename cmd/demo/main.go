package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"libercare/config"
	"libercare/demo/tui"
	"libercare/types"
)

func main() {
	// Load environment
	_ = godotenv.Load()

	// Parse command-line flags
	apiURL := flag.String("url", config.GetEnvOrDefault("LIBERCARE_URL", "http://localhost:8080"), "LiberCare API URL")
	lang := flag.String("lang", config.GetEnvOrDefault("DEFAULT_LANGUAGE", "fr"), "Initial language (fr, en, ru)")
	flag.Parse()

	// Create TUI model
	m := tui.NewModel(*apiURL, types.Language(*lang))

	// Create the tea program
	program := tea.NewProgram(m)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		program.Quit()
	}()

	// Run the program
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
