package world

import "github.com/nstehr/colony/colony-core/model"

// ActionKind names an action primitive on the wire.
type ActionKind string

const (
	ActionMove     ActionKind = "move"
	ActionHarvest  ActionKind = "harvest"
	ActionBuild    ActionKind = "build"
	ActionRepair   ActionKind = "repair"
	ActionTransfer ActionKind = "transfer"
	ActionWithdraw ActionKind = "withdraw"
	ActionPickup   ActionKind = "pickup"
	ActionUpgrade  ActionKind = "upgrade_controller"
	ActionAttack   ActionKind = "attack"
	ActionHeal     ActionKind = "heal"
	ActionSpawn    ActionKind = "spawn"
	ActionRecycle  ActionKind = "recycle"
)

// Intent is one accepted action, ready for the host to execute. Actor is the
// agent name for agent actions and the structure id for structure actions.
type Intent struct {
	Tick     int               `json:"tick"`
	Actor    string            `json:"actor"`
	Action   ActionKind        `json:"action"`
	Target   string            `json:"target,omitempty"`
	Pos      *model.Position   `json:"pos,omitempty"`
	Resource model.Resource    `json:"resource,omitempty"`
	Amount   int               `json:"amount,omitempty"`
	Order    *model.SpawnOrder `json:"order,omitempty"`
}
