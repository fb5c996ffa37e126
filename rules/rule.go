package rules

import (
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/colony/colony-core/model"
)

// Rule is one line of the colony's population plan: keep Quota agents of
// Role alive, built from Body. The scheduler walks rules by priority and
// orders the first one that is under quota and affordable.
type Rule struct {
	Name         string      // human-readable identifier
	Role         model.Role  // role tag given to spawned agents
	Quota        int         // desired number of present agents
	Priority     int         // higher = considered first
	Body         BodySpec    // how the body grows with energy
	ConditionSrc string      // optional expr source; empty means always active
	program      *vm.Program // compiled bytecode
}
