package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mlev/stackfall/internal/game"
	"github.com/mlev/stackfall/internal/protocol"
)

// colors is indexed by cell value: 0 empty, 1..7 shape index + 1.
var (
	colors = []string{
		"0",
		"51",  // I cyan
		"226", // O yellow
		"201", // T magenta
		"46",  // S green
		"196", // Z red
		"21",  // J blue
		"208", // L orange
	}

	ghostColor = "244"

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("15"))

	infoStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("15"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51"))

	gameOverStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	disconnectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type cellPos struct {
	x, y int
}

// RenderBoard draws the playfield with the falling piece and its ghost
// projection. Everything comes from read-only engine state.
func RenderBoard(g *game.Game) string {
	active := make(map[cellPos]uint8, 4)
	if p := g.CurrentPiece; p != nil {
		for _, c := range p.Cells {
			active[cellPos{p.X + c.X, p.Y + c.Y}] = uint8(p.Type.Index() + 1)
		}
	}
	ghost := make(map[cellPos]bool, 4)
	if gp := g.GhostPosition(); gp != nil {
		for _, c := range gp.Cells {
			ghost[cellPos{gp.X + c.X, gp.Y + c.Y}] = true
		}
	}

	var sb strings.Builder
	for y := 0; y < game.BoardHeight; y++ {
		for x := 0; x < game.BoardWidth; x++ {
			char := "  "
			color := "0"

			switch {
			case active[cellPos{x, y}] != 0:
				char = "██"
				color = colors[active[cellPos{x, y}]]
			case g.Board[y][x] != 0:
				char = "██"
				color = colors[g.Board[y][x]]
			case ghost[cellPos{x, y}]:
				char = "[]"
				color = ghostColor
			}

			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(color)).
				Render(char))
		}
		if y < game.BoardHeight-1 {
			sb.WriteString("\n")
		}
	}

	return boardStyle.Render(sb.String())
}

// RenderPiecePreview draws a shape in its spawn orientation. Spawn
// offsets always fit a 2x4 box with the pivot in the second column.
func RenderPiecePreview(t game.PieceType) string {
	var grid [2][4]bool
	for _, c := range t.Cells() {
		grid[c.Y][c.X+1] = true
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors[t.Index()+1]))

	var sb strings.Builder
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if grid[y][x] {
				sb.WriteString(style.Render("██"))
			} else {
				sb.WriteString("  ")
			}
		}
		if y == 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// FormatStats lists the per-shape spawn counters with their share of
// all spawns. The engine only counts; percentages are display math.
func FormatStats(stats [game.NumPieceTypes]int) string {
	total := 0
	for _, n := range stats {
		total += n
	}

	var sb strings.Builder
	for i, n := range stats {
		pct := 0
		if total > 0 {
			pct = n * 100 / total
		}
		sb.WriteString(fmt.Sprintf("%s %4d %3d%%", game.PieceFromIndex(i), n, pct))
		if i < game.NumPieceTypes-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RenderInfo draws the side panel: score, next piece, statistics and
// the key bindings.
func RenderInfo(playerName string, g *game.Game) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("STACKFALL") + "\n\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Player: %s", playerName)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Score: %d", g.Score)) + "\n\n")

	sb.WriteString(titleStyle.Render("NEXT") + "\n")
	sb.WriteString(RenderPiecePreview(g.NextPiece) + "\n\n")

	sb.WriteString(titleStyle.Render("STATS") + "\n")
	sb.WriteString(infoStyle.Render(FormatStats(g.PieceStats)) + "\n")
	sb.WriteString(RenderControls())

	return sb.String()
}

// RenderGameOver draws the banner shown while waiting for the restart.
func RenderGameOver(score int) string {
	return gameOverStyle.Render(fmt.Sprintf("GAME OVER  score %d  (restarting...)", score))
}

// RenderControls lists the key bindings.
func RenderControls() string {
	return infoStyle.Render(`
Controls:
  ← →    Move left/right
  ↑      Rotate
  ↓      Soft drop
  Space  Hard drop
  Q/Esc  Quit
`)
}

// RenderWatchBoard draws one published board: name, the bottom half of
// the playfield where the stack lives, and the score.
func RenderWatchBoard(b protocol.PublishedBoard) string {
	const previewHeight = 10
	startY := game.BoardHeight - previewHeight
	board := game.BoardFromFlat(b.Board)

	var sb strings.Builder

	nameStyle := lipgloss.NewStyle().
		MaxWidth(game.BoardWidth).
		Foreground(lipgloss.Color("15"))
	sb.WriteString(nameStyle.Render(b.Name) + "\n")

	for y := startY; y < game.BoardHeight; y++ {
		for x := 0; x < game.BoardWidth; x++ {
			v := board[y][x]
			if v != 0 {
				sb.WriteString(lipgloss.NewStyle().
					Foreground(lipgloss.Color(colors[v])).
					Render("█"))
			} else {
				sb.WriteString("·")
			}
		}
		sb.WriteString("\n")
	}

	if b.GameOver {
		sb.WriteString(gameOverStyle.Render("OUT"))
	} else {
		sb.WriteString(infoStyle.Render(fmt.Sprintf("S:%d", b.Score)))
	}

	return sb.String()
}

// RenderWatchGrid lays published boards out in rows of four.
func RenderWatchGrid(boards []protocol.PublishedBoard, maxDisplay int) string {
	if len(boards) == 0 {
		return ""
	}

	display := boards
	if len(display) > maxDisplay {
		display = display[:maxDisplay]
	}

	var sb strings.Builder
	row := ""
	col := 0
	cols := 4

	for _, b := range display {
		row += lipgloss.NewStyle().
			Padding(0, 1).
			Render(RenderWatchBoard(b))

		col++
		if col >= cols {
			sb.WriteString(row + "\n")
			row = ""
			col = 0
		}
	}
	if row != "" {
		sb.WriteString(row)
	}

	return sb.String()
}
