package world

import "fmt"

// Status is the result code of an action primitive. Primitives never fail
// any other way; callers branch on the code.
type Status int

const (
	OK                    Status = 0
	ErrNotOwner           Status = -1
	ErrNoPath             Status = -2
	ErrNameExists         Status = -3
	ErrBusy               Status = -4
	ErrNotFound           Status = -5
	ErrNotEnoughResources Status = -6
	ErrInvalidTarget      Status = -7
	ErrFull               Status = -8
	ErrNotInRange         Status = -9
	ErrInvalidArgs        Status = -10
	ErrTired              Status = -11
	ErrNoBodyPart         Status = -12
	ErrRCLNotEnough       Status = -14
)

var statusNames = map[Status]string{
	OK:                    "ok",
	ErrNotOwner:           "not-owner",
	ErrNoPath:             "no-path",
	ErrNameExists:         "name-exists",
	ErrBusy:               "busy",
	ErrNotFound:           "not-found",
	ErrNotEnoughResources: "not-enough-resources",
	ErrInvalidTarget:      "invalid-target",
	ErrFull:               "full",
	ErrNotInRange:         "not-in-range",
	ErrInvalidArgs:        "invalid-args",
	ErrTired:              "tired",
	ErrNoBodyPart:         "no-body-part",
	ErrRCLNotEnough:       "controller-level-insufficient",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for code, name := range statusNames {
		if name == string(b) {
			*s = code
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}
