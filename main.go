package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mlev/stackfall/internal/tui"
)

// This is the standalone local entry point. To publish games to a feed
// server, use:
//   Server:  go run ./cmd/server
//   Player:  go run ./cmd/client --server ws://localhost:8080/ws --name YourName
//   Watcher: go run ./cmd/watch --server ws://localhost:8080/ws

func main() {
	name := "Player"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	// nil client = local-only mode, nothing is published
	model := tui.NewModel(name, nil)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
