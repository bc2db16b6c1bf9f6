package models

import (
	"fmt"
	"strings"
)

// Phase is the global lifecycle stage of the lottery
type Phase uint8

const (
	PhaseInactive Phase = iota
	PhaseIdle
	PhaseActive
	PhasePayout
)

// String returns the canonical upper-case name of the phase
func (p Phase) String() string {
	switch p {
	case PhaseInactive:
		return "INACTIVE"
	case PhaseIdle:
		return "IDLE"
	case PhaseActive:
		return "ACTIVE"
	case PhasePayout:
		return "PAYOUT"
	default:
		return fmt.Sprintf("PHASE(%d)", uint8(p))
	}
}

// ParsePhase parses a phase name (case-insensitive)
func ParsePhase(s string) (Phase, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INACTIVE":
		return PhaseInactive, nil
	case "IDLE":
		return PhaseIdle, nil
	case "ACTIVE":
		return PhaseActive, nil
	case "PAYOUT":
		return PhasePayout, nil
	default:
		return PhaseInactive, fmt.Errorf("unknown phase %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
