package game

const (
	BoardWidth  = 10
	BoardHeight = 20
)

// Board is the playfield grid with row 0 at the top. 0 is empty;
// 1..7 is the occupying shape's index+1. Renderers map the value to a
// color; the engine only distinguishes zero from nonzero. Only lock
// and line clear write to it.
type Board [BoardHeight][BoardWidth]uint8

// IsValidPosition reports whether the four offsets placed at pivot
// (x, y) fit: inside the side walls, above the floor, and not on a
// filled cell. Rows above the top are allowed and never checked
// against the grid, so a freshly spawned piece may hang partially off
// the board.
func (b *Board) IsValidPosition(cells [4]Point, x, y int) bool {
	for _, c := range cells {
		absX := x + c.X
		absY := y + c.Y
		if absX < 0 || absX >= BoardWidth || absY >= BoardHeight {
			return false
		}
		if absY >= 0 && b[absY][absX] != 0 {
			return false
		}
	}
	return true
}

// lock writes the piece's in-bounds cells into the grid as its shape
// index+1. Cells above row 0 are silently dropped.
func (b *Board) lock(p *ActivePiece) {
	for _, c := range p.Cells {
		absX := p.X + c.X
		absY := p.Y + c.Y
		if absX >= 0 && absX < BoardWidth && absY >= 0 && absY < BoardHeight {
			b[absY][absX] = uint8(p.Type.Index() + 1)
		}
	}
}

// clearLines removes full rows, compacts the survivors toward the
// bottom in their original order, and returns how many rows cleared.
func (b *Board) clearLines() int {
	var next Board
	cleared := 0
	writeY := BoardHeight - 1
	for y := BoardHeight - 1; y >= 0; y-- {
		full := true
		for x := 0; x < BoardWidth; x++ {
			if b[y][x] == 0 {
				full = false
				break
			}
		}
		if full {
			cleared++
			continue
		}
		next[writeY] = b[y]
		writeY--
	}
	*b = next
	return cleared
}

// ToFlat returns the grid as a flat row-major array for snapshots.
func (b *Board) ToFlat() []int {
	flat := make([]int, BoardHeight*BoardWidth)
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			flat[y*BoardWidth+x] = int(b[y][x])
		}
	}
	return flat
}

// BoardFromFlat reconstructs a Board from a flat snapshot array.
// Out-of-range values are treated as empty.
func BoardFromFlat(flat []int) Board {
	var b Board
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			idx := y*BoardWidth + x
			if idx < len(flat) && flat[idx] >= 1 && flat[idx] <= NumPieceTypes {
				b[y][x] = uint8(flat[idx])
			}
		}
	}
	return b
}
