package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mlev/stackfall/internal/netclient"
	"github.com/mlev/stackfall/internal/tui"
)

func main() {
	serverAddr := flag.String("server", "ws://localhost:8080/ws", "WebSocket feed server address")
	flag.Parse()

	client, err := netclient.New(*serverAddr, netclient.RoleWatch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to feed server at %s: %v\n", *serverAddr, err)
		fmt.Fprintf(os.Stderr, "Make sure the server is running (go run ./cmd/server)\n")
		os.Exit(1)
	}
	defer client.Close()

	model := tui.NewWatchModel(client)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	client.SetProgram(p)
	client.Start()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
