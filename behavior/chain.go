// Package behavior decides what each agent does in a tick. Every role is an
// ordered list of candidates; the first one that commits to an action wins.
package behavior

import (
	"log/slog"

	"github.com/nstehr/colony/colony-core/memory"
	"github.com/nstehr/colony/colony-core/model"
	"github.com/nstehr/colony/colony-core/world"
)

// Decision is the action an agent committed to, or the last attempt when
// nothing committed.
type Decision struct {
	Tier   string           `json:"tier"`
	Action world.ActionKind `json:"action,omitempty"`
	Target string           `json:"target,omitempty"`
	Status world.Status     `json:"status"`
}

// Options carries per-colony tuning for behaviors.
type Options struct {
	// Rally is where idle builders wait. When nil they wait next to the
	// nearest storage or spawn.
	Rally *model.Position
}

// Context is one agent's decision input. Record is the agent's own state;
// candidates update it in place and the caller stores it afterwards.
type Context struct {
	W      world.World
	Agent  *model.Agent
	Record memory.Record
	Opts   Options
}

// Candidate is one sub-behavior. It reports true when it committed an
// action for the tick.
type Candidate func(c *Context) (Decision, bool)

// First runs candidates in order and stops at the first that commits.
func First(c *Context, candidates ...Candidate) (Decision, bool) {
	var last Decision
	for _, cand := range candidates {
		d, ok := cand(c)
		if ok {
			return d, true
		}
		if d.Tier != "" {
			last = d
		}
	}
	return last, false
}

// act applies the status policy to the result of an action on target.
// Out of range moves toward the target and keeps the tier unless there is
// no path; resource, capacity and busy failures give way to the next tier.
func (c *Context) act(tier string, action world.ActionKind, target world.Object, st world.Status) (Decision, bool) {
	d := Decision{Tier: tier, Action: action, Target: target.ObjectID(), Status: st}
	switch st {
	case world.OK, world.ErrTired:
		return d, true
	case world.ErrNotInRange:
		return c.move(tier, target)
	case world.ErrNotEnoughResources, world.ErrFull, world.ErrBusy:
		return d, false
	case world.ErrNotFound, world.ErrInvalidTarget:
		slog.Debug("action target invalid", "agent", c.Agent.Name, "tier", tier, "target", d.Target, "status", st)
		return d, false
	default:
		slog.Warn("unexpected action status", "agent", c.Agent.Name, "tier", tier, "action", action, "status", st)
		return d, false
	}
}

// move steps toward target. Only a missing path abandons the tier.
func (c *Context) move(tier string, target world.Object) (Decision, bool) {
	st := c.W.Move(c.Agent, target.Position())
	d := Decision{Tier: tier, Action: world.ActionMove, Target: target.ObjectID(), Status: st}
	return d, st != world.ErrNoPath
}

// spot adapts a bare position to world.Object for moves.
type spot model.Position

func (s spot) ObjectID() string         { return "" }
func (s spot) Position() model.Position { return model.Position(s) }
