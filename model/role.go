package model

import (
	"fmt"
	"strings"
)

// Role is the behavioral category of an agent. The set is closed; adding a
// role means adding a behavior for it.
type Role int

const (
	RoleUnknown Role = iota
	RoleHarvester
	RoleHauler
	RoleBuilder
	RoleUpgrader
)

var roleNames = map[Role]string{
	RoleHarvester: "harvester",
	RoleHauler:    "hauler",
	RoleBuilder:   "builder",
	RoleUpgrader:  "upgrader",
}

// Roles lists every assignable role.
func Roles() []Role {
	return []Role{RoleHarvester, RoleHauler, RoleBuilder, RoleUpgrader}
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "unknown"
}

// Title is the capitalized role name used as a spawn name prefix.
func (r Role) Title() string {
	n := r.String()
	return strings.ToUpper(n[:1]) + n[1:]
}

// ParseRole accepts role names case-insensitively. "mover" is kept as an
// alias for hauler since older host payloads still send it.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "mover" {
		return RoleHauler, nil
	}
	for r, n := range roleNames {
		if n == s {
			return r, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	if len(b) == 0 || string(b) == "unknown" {
		*r = RoleUnknown
		return nil
	}
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
