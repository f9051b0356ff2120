package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillRow(b *Board, y int, val uint8) {
	for x := 0; x < BoardWidth; x++ {
		b[y][x] = val
	}
}

func TestIsValidPositionBounds(t *testing.T) {
	var b Board
	single := [4]Point{{0, 0}, {0, 0}, {0, 0}, {0, 0}}

	assert.True(t, b.IsValidPosition(single, 0, 0))
	assert.True(t, b.IsValidPosition(single, BoardWidth-1, BoardHeight-1))
	assert.False(t, b.IsValidPosition(single, -1, 0), "left wall")
	assert.False(t, b.IsValidPosition(single, BoardWidth, 0), "right wall")
	assert.False(t, b.IsValidPosition(single, 0, BoardHeight), "below floor")

	// Above the top is fine: the cell is never checked against the grid.
	assert.True(t, b.IsValidPosition(single, 0, -3))
}

func TestIsValidPositionOccupiedCells(t *testing.T) {
	var b Board
	b[10][4] = 3
	single := [4]Point{{0, 0}, {0, 0}, {0, 0}, {0, 0}}

	assert.False(t, b.IsValidPosition(single, 4, 10))
	assert.True(t, b.IsValidPosition(single, 4, 9))
	assert.True(t, b.IsValidPosition(single, 3, 10))

	// A filled cell under an off-top offset does not matter.
	b[0][4] = 1
	offsets := [4]Point{{0, -1}, {0, -2}, {0, -3}, {0, -4}}
	assert.True(t, b.IsValidPosition(offsets, 4, 0))
}

func TestLockWritesShapeIndexPlusOne(t *testing.T) {
	var b Board
	p := &ActivePiece{Type: PieceT, X: 5, Y: 18, Cells: PieceT.Cells()}
	b.lock(p)

	assert.Equal(t, uint8(PieceT.Index()+1), b[18][5])
	assert.Equal(t, uint8(PieceT.Index()+1), b[18][4])
	assert.Equal(t, uint8(PieceT.Index()+1), b[18][6])
	assert.Equal(t, uint8(PieceT.Index()+1), b[19][5])

	count := 0
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if b[y][x] != 0 {
				count++
			}
		}
	}
	assert.Equal(t, 4, count, "only the four piece cells are written")
}

func TestLockDropsOffTopCells(t *testing.T) {
	var b Board
	// Vertical I with two cells above row 0.
	p := &ActivePiece{
		Type:  PieceI,
		X:     0,
		Y:     0,
		Cells: [4]Point{{0, 0}, {0, -1}, {0, 1}, {0, 2}},
	}
	b.lock(p)

	assert.NotZero(t, b[0][0])
	assert.NotZero(t, b[1][0])
	assert.NotZero(t, b[2][0])
	count := 0
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if b[y][x] != 0 {
				count++
			}
		}
	}
	assert.Equal(t, 3, count, "the off-top cell is silently dropped")
}

func TestClearLinesCompactsSurvivorsInOrder(t *testing.T) {
	var b Board
	fillRow(&b, 19, 1) // full, clears
	b[18][0] = 2       // survivor A
	fillRow(&b, 17, 3) // full, clears
	b[16][9] = 4       // survivor B
	b[15][5] = 5       // survivor C

	cleared := b.clearLines()
	require.Equal(t, 2, cleared)

	// Survivors keep their top-to-bottom order, packed at the bottom.
	assert.Equal(t, uint8(2), b[19][0])
	assert.Equal(t, uint8(4), b[18][9])
	assert.Equal(t, uint8(5), b[17][5])

	for y := 0; y < 17; y++ {
		for x := 0; x < BoardWidth; x++ {
			assert.Zero(t, b[y][x], "rows above the survivors are empty")
		}
	}
}

func TestClearLinesNoFullRows(t *testing.T) {
	var b Board
	b[19][0] = 1
	b[10][3] = 2
	before := b

	assert.Equal(t, 0, b.clearLines())
	assert.Equal(t, before, b)
}

func TestBoardFlatRoundTrip(t *testing.T) {
	var b Board
	b[0][0] = 1
	b[19][9] = 7
	b[7][3] = 4

	got := BoardFromFlat(b.ToFlat())
	assert.Equal(t, b, got)
}
