package model

// Snapshot is the read-only view of one room for a single tick. The host
// sends one per tick; decision code never mutates it.
type Snapshot struct {
	Tick                    int          `json:"tick"`
	Room                    string       `json:"room"`
	EnergyAvailable         int          `json:"energyAvailable"`
	EnergyCapacityAvailable int          `json:"energyCapacityAvailable"`
	Controller              *Controller  `json:"controller,omitempty"`
	Agents                  []*Agent     `json:"agents"`
	Hostiles                []*Agent     `json:"hostiles"`
	Structures              []*Structure `json:"structures"`
	Sites                   []*Site      `json:"sites"`
	Sources                 []*Source    `json:"sources"`
	Dropped                 []*Dropped   `json:"dropped"`
	Terrain                 *Terrain     `json:"terrain,omitempty"`
}

// Position is a tile inside a room.
type Position struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Room string `json:"room,omitempty"`
}

// RangeTo is the chebyshev distance used for every range check in the game.
func (p Position) RangeTo(o Position) int {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

func (p Position) InRangeTo(o Position, r int) bool { return p.RangeTo(o) <= r }

func (p Position) IsNearTo(o Position) bool { return p.RangeTo(o) <= 1 }

// Equal ignores the room name so host payloads that omit it still compare.
func (p Position) Equal(o Position) bool { return p.X == o.X && p.Y == o.Y }

type Controller struct {
	ID    string   `json:"id"`
	Pos   Position `json:"pos"`
	Level int      `json:"level"`
	My    bool     `json:"my"`
}

func (c *Controller) ObjectID() string   { return c.ID }
func (c *Controller) Position() Position { return c.Pos }

type Source struct {
	ID             string   `json:"id"`
	Pos            Position `json:"pos"`
	Energy         int      `json:"energy"`
	EnergyCapacity int      `json:"energyCapacity"`
}

func (s *Source) ObjectID() string   { return s.ID }
func (s *Source) Position() Position { return s.Pos }

// Dropped is a pile of a resource lying on a tile.
type Dropped struct {
	ID       string   `json:"id"`
	Pos      Position `json:"pos"`
	Resource Resource `json:"resource"`
	Amount   int      `json:"amount"`
}

func (d *Dropped) ObjectID() string   { return d.ID }
func (d *Dropped) Position() Position { return d.Pos }

// Site is a queued construction site. Order in the snapshot is queue order.
type Site struct {
	ID            string        `json:"id"`
	Kind          StructureKind `json:"kind"`
	Pos           Position      `json:"pos"`
	Progress      int           `json:"progress"`
	ProgressTotal int           `json:"progressTotal"`
}

func (s *Site) ObjectID() string   { return s.ID }
func (s *Site) Position() Position { return s.Pos }
