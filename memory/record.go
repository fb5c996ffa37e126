package memory

import (
	"log/slog"
	"maps"

	"github.com/nstehr/colony/colony-core/model"
)

// Mode is the upgrader's travel/work state.
type Mode string

const (
	ModeMoving  Mode = "moving"
	ModeWorking Mode = "working"
)

// Record is the state one entity carries from tick to tick. Each entity owns
// its record exclusively; decisions get a copy and hand back the update.
type Record struct {
	Role      model.Role      `json:"role,omitempty"`
	Temporary bool            `json:"temporary,omitempty"`
	Born      int             `json:"born,omitempty"`
	Source    string          `json:"source,omitempty"`
	Mode      Mode            `json:"mode,omitempty"`
	TargetPos *model.Position `json:"targetPos,omitempty"`
	Target    string          `json:"target,omitempty"`
}

// Table holds every record for one room, split by owner kind. Agents are
// keyed by name, structures by id.
type Table struct {
	Agents     map[string]Record `json:"agents"`
	Structures map[string]Record `json:"structures"`
}

func NewTable() *Table {
	return &Table{
		Agents:     make(map[string]Record),
		Structures: make(map[string]Record),
	}
}

// Agent returns the record for an agent, creating it from the agent's own
// tags on first use.
func (t *Table) Agent(a *model.Agent, tick int) Record {
	if rec, ok := t.Agents[a.Name]; ok {
		return rec
	}
	rec := Record{Role: a.Role, Temporary: a.Temporary, Born: tick}
	t.Agents[a.Name] = rec
	return rec
}

// Tag makes the records the one source of an agent's role and temporary
// flag: each agent's tags are overwritten from its record, so peers are
// judged by the same facts as the agent itself. Hosts need not echo tags.
func (t *Table) Tag(agents []*model.Agent, tick int) {
	for _, a := range agents {
		rec := t.Agent(a, tick)
		if rec.Role == model.RoleUnknown && a.Role != model.RoleUnknown {
			rec.Role = a.Role
			t.Agents[a.Name] = rec
		}
		a.Role = rec.Role
		a.Temporary = rec.Temporary
	}
}

func (t *Table) PutAgent(name string, rec Record) { t.Agents[name] = rec }

func (t *Table) Structure(id string) Record { return t.Structures[id] }

func (t *Table) PutStructure(id string, rec Record) { t.Structures[id] = rec }

// Prune drops records whose owners no longer exist and returns how many
// were removed.
func (t *Table) Prune(agents, structures map[string]bool) int {
	removed := 0
	for name := range t.Agents {
		if !agents[name] {
			delete(t.Agents, name)
			slog.Info("clearing non-existing agent memory", "name", name)
			removed++
		}
	}
	for id := range t.Structures {
		if !structures[id] {
			delete(t.Structures, id)
			removed++
		}
	}
	return removed
}

// Clone copies the table so a store can keep it without aliasing.
func (t *Table) Clone() *Table {
	return &Table{
		Agents:     maps.Clone(t.Agents),
		Structures: maps.Clone(t.Structures),
	}
}
