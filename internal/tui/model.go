package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mlev/stackfall/internal/game"
	"github.com/mlev/stackfall/internal/netclient"
	"github.com/mlev/stackfall/internal/protocol"
)

// --- Custom tea.Msg types ---

type GravityTickMsg time.Time
type RestartMsg time.Time

// SnapshotTickMsg triggers publishing the board to the feed server.
type SnapshotTickMsg time.Time

// The engine has no clock of its own; all pacing lives here.
const (
	gravityInterval  = 500 * time.Millisecond
	snapshotInterval = 100 * time.Millisecond
	restartDelay     = 2 * time.Second
)

// --- Screens ---

type Screen int

const (
	ScreenConnecting Screen = iota
	ScreenPlaying
	ScreenGameOver
)

// --- Model ---

// Model drives a single game. It calls the engine's mutators on key
// and timer events and reads its state to draw each frame; the engine
// never calls back.
type Model struct {
	screen     Screen
	playerName string
	clientID   string
	g          *game.Game
	width      int
	height     int

	// Optional feed publisher; nil means purely local play.
	client       *netclient.Client
	disconnected bool
}

// NewModel creates the player model. With a nil client the game is
// local-only and nothing is published.
func NewModel(playerName string, client *netclient.Client) Model {
	screen := ScreenConnecting
	if client == nil {
		screen = ScreenPlaying
	}
	return Model{
		screen:     screen,
		playerName: playerName,
		g:          game.New(),
		client:     client,
	}
}

func (m Model) Init() tea.Cmd {
	if m.screen == ScreenPlaying {
		return gravityCmd()
	}
	return nil
}

func gravityCmd() tea.Cmd {
	return tea.Tick(gravityInterval, func(t time.Time) tea.Msg {
		return GravityTickMsg(t)
	})
}

func snapshotCmd() tea.Cmd {
	return tea.Tick(snapshotInterval, func(t time.Time) tea.Msg {
		return SnapshotTickMsg(t)
	})
}

func restartCmd() tea.Cmd {
	return tea.Tick(restartDelay, func(t time.Time) tea.Msg {
		return RestartMsg(t)
	})
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case GravityTickMsg:
		return m.handleGravityTick()
	case RestartMsg:
		return m.restart()
	case SnapshotTickMsg:
		return m.handleSnapshotTick()

	case netclient.ConnectedMsg:
		m.clientID = msg.ClientID
		m.screen = ScreenPlaying
		return m, tea.Batch(gravityCmd(), snapshotCmd())
	case netclient.DisconnectedMsg:
		// The engine is local authority; losing the feed server only
		// stops publishing.
		m.disconnected = true
		return m, nil
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		if m.client != nil {
			m.client.Close()
		}
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenPlaying:
		return m.handlePlayingKeys(msg)
	case ScreenGameOver:
		if msg.String() == "enter" {
			return m.restart()
		}
	}
	return m, nil
}

func (m Model) handlePlayingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.g.MoveLeft()
	case "right", "l":
		m.g.MoveRight()
	case "up", "x":
		m.g.Rotate()
	case "down", "j":
		m.g.SoftDrop()
	case " ":
		m.g.HardDrop()
		// A hard drop locks, and a lock can end the game.
		if m.g.IsGameOver {
			m.screen = ScreenGameOver
			return m, restartCmd()
		}
	}
	return m, nil
}

func (m Model) handleGravityTick() (tea.Model, tea.Cmd) {
	if m.screen != ScreenPlaying {
		return m, nil
	}

	m.g.Tick()
	if m.g.IsGameOver {
		m.screen = ScreenGameOver
		return m, restartCmd()
	}
	return m, gravityCmd()
}

// restart discards the finished engine and builds a fresh one; the
// engine itself has no way back out of game over.
func (m Model) restart() (tea.Model, tea.Cmd) {
	m.g = game.New()
	m.screen = ScreenPlaying
	return m, gravityCmd()
}

func (m Model) handleSnapshotTick() (tea.Model, tea.Cmd) {
	if m.client == nil || m.disconnected {
		return m, nil
	}

	m.client.Publish(protocol.PublishPayload{
		Name:      m.playerName,
		Score:     m.g.Score,
		Stats:     m.g.PieceStats,
		NextShape: m.g.NextPiece.Index(),
		GameOver:  m.g.IsGameOver,
		Board:     m.g.Board.ToFlat(),
	})
	return m, snapshotCmd()
}

// --- View ---

func (m Model) View() string {
	switch m.screen {
	case ScreenConnecting:
		return m.renderCentered("Connecting to feed server...")
	case ScreenPlaying, ScreenGameOver:
		return m.renderGame()
	}
	return ""
}

func (m Model) renderCentered(content string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (m Model) renderGame() string {
	board := RenderBoard(m.g)
	info := RenderInfo(m.playerName, m.g)

	leftPanel := lipgloss.NewStyle().
		Width(24).
		Render(info)

	centerPanel := lipgloss.NewStyle().
		Padding(1, 2).
		Render(board)

	content := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, centerPanel)

	if m.screen == ScreenGameOver {
		content = lipgloss.JoinVertical(lipgloss.Center,
			content,
			RenderGameOver(m.g.Score),
		)
	}
	if m.disconnected {
		content = lipgloss.JoinVertical(lipgloss.Center,
			content,
			disconnectStyle.Render("feed server lost, playing offline"),
		)
	}

	return m.renderCentered(content)
}

// --- Watcher ---

// WatchModel renders the spectator feed. It holds no engine at all:
// boards arrive as snapshots and are only drawn.
type WatchModel struct {
	width   int
	height  int
	client  *netclient.Client
	boards  []protocol.PublishedBoard
	synced  bool
	dropped bool
}

func NewWatchModel(client *netclient.Client) WatchModel {
	return WatchModel{client: client}
}

func (m WatchModel) Init() tea.Cmd {
	return nil
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.client != nil {
				m.client.Close()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case netclient.DisconnectedMsg:
		m.dropped = true
	case netclient.FeedMsg:
		m.boards = msg.Boards
		m.synced = true
	case netclient.BoardClosedMsg:
		kept := m.boards[:0]
		for _, b := range m.boards {
			if b.ClientID != msg.ClientID {
				kept = append(kept, b)
			}
		}
		m.boards = kept
	}
	return m, nil
}

func (m WatchModel) View() string {
	center := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center)

	if m.dropped {
		return center.Render("Disconnected from feed server.\nPress q to exit.")
	}
	if !m.synced {
		return center.Render("Waiting for feed...")
	}
	if len(m.boards) == 0 {
		return center.Render("No boards published yet.")
	}
	return center.Render(RenderWatchGrid(m.boards, 8))
}
