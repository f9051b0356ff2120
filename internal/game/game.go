package game

import "math/rand"

// Game owns the board and the falling piece and enforces every rule:
// collision, locking, line clears, scoring, game over. All methods run
// synchronously and assume a single caller; the driver decides when
// gravity ticks happen. Rejected moves are silent no-ops, and once
// IsGameOver is set every mutator becomes a no-op until the driver
// builds a fresh Game.
type Game struct {
	Board        Board
	CurrentPiece *ActivePiece
	NextPiece    PieceType
	Score        int
	PieceStats   [NumPieceTypes]int
	IsGameOver   bool

	rng *rand.Rand
}

// New creates a game drawing shapes from the process-wide generator.
func New() *Game {
	return NewWithRand(nil)
}

// NewWithRand creates a game drawing shapes from rng. A nil rng falls
// back to the process-wide generator; tests pass a seeded source to
// get deterministic piece sequences.
func NewWithRand(rng *rand.Rand) *Game {
	g := &Game{rng: rng}
	first := g.randomPiece()
	g.NextPiece = g.randomPiece()
	g.CurrentPiece = NewActivePiece(first)
	g.PieceStats[first.Index()]++
	return g
}

func (g *Game) randomPiece() PieceType {
	if g.rng != nil {
		return PieceType(g.rng.Intn(NumPieceTypes))
	}
	return RandomPiece()
}

// Tick applies one step of gravity: the piece moves down a row, or
// locks in place if it cannot. Tick and HardDrop are the only two
// paths to a lock.
func (g *Game) Tick() {
	if g.IsGameOver || g.CurrentPiece == nil {
		return
	}
	p := g.CurrentPiece
	if g.Board.IsValidPosition(p.Cells, p.X, p.Y+1) {
		p.Y++
		return
	}
	g.lockPiece()
}

// MoveLeft shifts the piece one column left if nothing is in the way.
func (g *Game) MoveLeft() { g.nudge(-1) }

// MoveRight shifts the piece one column right if nothing is in the way.
func (g *Game) MoveRight() { g.nudge(1) }

func (g *Game) nudge(dx int) {
	if g.IsGameOver || g.CurrentPiece == nil {
		return
	}
	p := g.CurrentPiece
	if g.Board.IsValidPosition(p.Cells, p.X+dx, p.Y) {
		p.X += dx
	}
}

// Rotate turns the piece 90 degrees clockwise about its pivot by
// mapping every offset (dx,dy) to (-dy,dx). The trial offsets are
// validated at the unchanged pivot before committing. There is no wall
// kick: a rotation blocked by a wall or the stack is discarded even
// when a shifted variant would fit.
func (g *Game) Rotate() {
	if g.IsGameOver || g.CurrentPiece == nil {
		return
	}
	p := g.CurrentPiece
	var trial [4]Point
	for i, c := range p.Cells {
		trial[i] = Point{X: -c.Y, Y: c.X}
	}
	if g.Board.IsValidPosition(trial, p.X, p.Y) {
		p.Cells = trial
	}
}

// SoftDrop moves the piece down one row for one point. A blocked soft
// drop does nothing at all: unlike Tick it never locks the piece.
func (g *Game) SoftDrop() {
	if g.IsGameOver || g.CurrentPiece == nil {
		return
	}
	p := g.CurrentPiece
	if g.Board.IsValidPosition(p.Cells, p.X, p.Y+1) {
		p.Y++
		g.Score++
	}
}

// HardDrop sends the piece straight down, two points per row, and
// locks it where it lands. A piece that was already resting locks
// immediately with no score.
func (g *Game) HardDrop() {
	if g.IsGameOver || g.CurrentPiece == nil {
		return
	}
	p := g.CurrentPiece
	for g.Board.IsValidPosition(p.Cells, p.X, p.Y+1) {
		p.Y++
		g.Score += 2
	}
	g.lockPiece()
}

// GhostPosition projects the current piece to its landing row and
// returns the resulting pose, or nil when no piece is falling. The
// game itself is not modified.
func (g *Game) GhostPosition() *ActivePiece {
	if g.CurrentPiece == nil {
		return nil
	}
	ghost := *g.CurrentPiece
	for g.Board.IsValidPosition(ghost.Cells, ghost.X, ghost.Y+1) {
		ghost.Y++
	}
	return &ghost
}

func (g *Game) lockPiece() {
	g.Board.lock(g.CurrentPiece)
	g.Score += clearScore(g.Board.clearLines())

	next := g.NextPiece
	g.NextPiece = g.randomPiece()
	g.PieceStats[next.Index()]++

	spawned := NewActivePiece(next)
	if !g.Board.IsValidPosition(spawned.Cells, spawned.X, spawned.Y) {
		g.IsGameOver = true
	}
	// Stored even when it overlaps, so the final frame can show it.
	g.CurrentPiece = spawned
}

// clearScore is the bonus for clearing n lines in one lock. Counts
// above four cannot happen with four-cell pieces but still pay the
// single-line rate.
func clearScore(n int) int {
	switch n {
	case 0:
		return 0
	case 1:
		return 100
	case 2:
		return 300
	case 3:
		return 500
	case 4:
		return 800
	default:
		return 100
	}
}
