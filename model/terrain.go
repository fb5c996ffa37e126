package model

// TerrainType classifies a single room tile.
type TerrainType byte

const (
	Plain TerrainType = 0 // walkable, normal cost
	Swamp TerrainType = 1 // walkable, high fatigue
	Wall  TerrainType = 2 // natural wall, never walkable
)

// RoomSize is the tile width and height of a room.
const RoomSize = 50

// Terrain is a row-major tile grid for one room. Width and Height default to
// RoomSize when the host omits them.
type Terrain struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Grid   []TerrainType `json:"grid"` // row-major: Grid[y*Width + x]
}

func (t *Terrain) dims() (int, int) {
	w, h := t.Width, t.Height
	if w <= 0 {
		w = RoomSize
	}
	if h <= 0 {
		h = RoomSize
	}
	return w, h
}

// InBounds reports whether (x, y) lies inside the room.
func (t *Terrain) InBounds(x, y int) bool {
	w, h := t.dims()
	return x >= 0 && x < w && y >= 0 && y < h
}

// At returns the terrain at (x, y). Out-of-bounds tiles read as Wall; a
// missing grid reads as Plain.
func (t *Terrain) At(x, y int) TerrainType {
	if !t.InBounds(x, y) {
		return Wall
	}
	w, _ := t.dims()
	i := y*w + x
	if i >= len(t.Grid) {
		return Plain
	}
	return t.Grid[i]
}

// IsWall is the terrain half of an obstacle check.
func (t *Terrain) IsWall(p Position) bool {
	return t.At(p.X, p.Y) == Wall
}

// Walkable counts tiles that are not walls.
func (t *Terrain) Walkable() int {
	w, h := t.dims()
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if t.At(x, y) != Wall {
				n++
			}
		}
	}
	return n
}
