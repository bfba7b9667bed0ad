package models

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an account. Only StatusActive may
// authenticate.
type Status uint8

const (
	StatusActive Status = iota + 1
	StatusInactive
	StatusBanned
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusBanned:
		return "banned"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s >= StatusActive && s <= StatusBanned
}

// ParseStatus maps the lowercase wire name back to a Status. Matching is
// case-insensitive.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "active":
		return StatusActive, nil
	case "inactive":
		return StatusInactive, nil
	case "banned":
		return StatusBanned, nil
	default:
		return 0, fmt.Errorf("unknown status %q", v)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
