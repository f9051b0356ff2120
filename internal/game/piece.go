package game

import "math/rand"

// PieceType identifies one of the seven tetromino shapes. The numeric
// order (I=0 through L=6) is a contract: stats counters and renderer
// color tables index by it.
type PieceType int

const (
	PieceI PieceType = iota
	PieceO
	PieceT
	PieceS
	PieceZ
	PieceJ
	PieceL
)

// NumPieceTypes is the number of distinct shapes.
const NumPieceTypes = 7

// Point is a cell offset relative to a piece's pivot. Y grows downward.
type Point struct {
	X, Y int
}

// pieceCells holds each shape's spawn-orientation offsets around a
// pivot at (0,0), indexed by PieceType.
var pieceCells = [NumPieceTypes][4]Point{
	PieceI: {{0, 0}, {-1, 0}, {1, 0}, {2, 0}},
	PieceO: {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	PieceT: {{0, 0}, {-1, 0}, {1, 0}, {0, 1}},
	PieceS: {{0, 0}, {-1, 0}, {0, 1}, {1, 1}},
	PieceZ: {{0, 0}, {1, 0}, {0, 1}, {-1, 1}},
	PieceJ: {{0, 0}, {-1, 0}, {1, 0}, {-1, 1}},
	PieceL: {{0, 0}, {-1, 0}, {1, 0}, {1, 1}},
}

var pieceNames = [NumPieceTypes]string{"I", "O", "T", "S", "Z", "J", "L"}

// Cells returns the shape's four canonical spawn offsets.
func (t PieceType) Cells() [4]Point {
	return pieceCells[t]
}

// Index returns the shape's stable index, I=0 through L=6.
func (t PieceType) Index() int { return int(t) }

// PieceFromIndex is the inverse of Index.
func PieceFromIndex(i int) PieceType { return PieceType(i) }

func (t PieceType) String() string {
	if t < 0 || int(t) >= NumPieceTypes {
		return "?"
	}
	return pieceNames[t]
}

// RandomPiece picks a shape uniformly from the process-wide generator.
func RandomPiece() PieceType {
	return PieceType(rand.Intn(NumPieceTypes))
}

// ActivePiece is the piece currently under player control. Cells are
// cumulative: rotation rewrites them in place rather than re-deriving
// them from the shape, so they carry whatever orientation the player
// has applied so far.
type ActivePiece struct {
	Type  PieceType
	X, Y  int
	Cells [4]Point
}

// NewActivePiece spawns the shape at the standard pivot, top center.
func NewActivePiece(t PieceType) *ActivePiece {
	return &ActivePiece{
		Type:  t,
		X:     BoardWidth / 2,
		Y:     0,
		Cells: t.Cells(),
	}
}
