package model

// StructureKind names a building type.
type StructureKind string

const (
	StructureSpawn      StructureKind = "spawn"
	StructureExtension  StructureKind = "extension"
	StructureTower      StructureKind = "tower"
	StructureContainer  StructureKind = "container"
	StructureStorage    StructureKind = "storage"
	StructureRoad       StructureKind = "road"
	StructureWall       StructureKind = "constructedWall"
	StructureRampart    StructureKind = "rampart"
	StructureLink       StructureKind = "link"
	StructureTerminal   StructureKind = "terminal"
	StructureLab        StructureKind = "lab"
	StructureController StructureKind = "controller"
)

// obstacleKinds block movement onto their tile.
var obstacleKinds = map[StructureKind]bool{
	StructureSpawn:     true,
	StructureWall:      true,
	StructureExtension: true,
	StructureLink:      true,
	StructureStorage:   true,
	StructureTower:     true,
	StructureLab:       true,
	StructureTerminal:  true,
}

// IsObstacle reports whether agents can stand on this kind of structure.
func (k StructureKind) IsObstacle() bool { return obstacleKinds[k] }

// IsFortification is true for walls and ramparts, which have huge hit
// pools and are never worth routine repair.
func (k StructureKind) IsFortification() bool {
	return k == StructureWall || k == StructureRampart
}

// SpawnProgress describes the agent a spawn is currently producing.
type SpawnProgress struct {
	Name          string `json:"name"`
	RemainingTime int    `json:"remainingTime"`
}

type Structure struct {
	ID            string         `json:"id"`
	Kind          StructureKind  `json:"kind"`
	Pos           Position       `json:"pos"`
	My            bool           `json:"my"`
	Hits          int            `json:"hits"`
	HitsMax       int            `json:"hitsMax"`
	Store         Store          `json:"store,omitempty"`
	StoreCapacity int            `json:"storeCapacity,omitempty"`
	Cooldown      int            `json:"cooldown,omitempty"`
	Spawning      *SpawnProgress `json:"spawning,omitempty"`
}

func (s *Structure) ObjectID() string   { return s.ID }
func (s *Structure) Position() Position { return s.Pos }

func (s *Structure) Energy() int { return s.Store[Energy] }

// FreeCapacity is how much more the store accepts.
func (s *Structure) FreeCapacity() int {
	return s.StoreCapacity - s.Store.Total()
}

// EnergyShortfall is how much energy an energy-only structure (spawn,
// extension, tower) still needs.
func (s *Structure) EnergyShortfall() int {
	return s.StoreCapacity - s.Store[Energy]
}

func (s *Structure) Damaged() bool { return s.Hits < s.HitsMax }

// SpawnOrder asks a spawn to produce one agent. Role and Temporary seed the
// new agent's state record.
type SpawnOrder struct {
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	Body      []PartKind `json:"body"`
	Temporary bool       `json:"temporary,omitempty"`
}
