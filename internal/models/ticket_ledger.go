package models

import (
	"fmt"
	"math"
)

// TicketLedger records which identity owns which ticket of a round.
// Owners is dense and zero-based: Owners[i] is the owner of ticket i.
// Holdings is the running ticket count per owner and always sums to len(Owners).
type TicketLedger struct {
	Owners   []string          `json:"owners" bson:"owners"`
	Holdings map[string]uint32 `json:"holdings" bson:"holdings"`
}

// NewTicketLedger creates an empty ledger
func NewTicketLedger() TicketLedger {
	return TicketLedger{
		Owners:   []string{},
		Holdings: make(map[string]uint32),
	}
}

// Len returns the number of tickets recorded
func (l *TicketLedger) Len() uint32 {
	return uint32(len(l.Owners))
}

// AssignTickets appends count contiguous tickets starting at start to owner.
// start must equal the current ledger length. It reports whether owner held no
// tickets before this call.
func (l *TicketLedger) AssignTickets(owner string, start, count uint32) (bool, error) {
	if owner == "" {
		return false, fmt.Errorf("ticket owner is empty")
	}
	if start != l.Len() {
		return false, fmt.Errorf("ticket index %d does not follow last index %d", start, l.Len())
	}
	if uint64(start)+uint64(count) > math.MaxUint32 {
		return false, fmt.Errorf("ticket index overflow")
	}
	if l.Holdings == nil {
		l.Holdings = make(map[string]uint32)
	}

	held := l.Holdings[owner]
	for i := uint32(0); i < count; i++ {
		l.Owners = append(l.Owners, owner)
	}
	l.Holdings[owner] = held + count
	return held == 0 && count > 0, nil
}

// TicketsOf returns how many tickets owner holds
func (l *TicketLedger) TicketsOf(owner string) uint32 {
	return l.Holdings[owner]
}

// OwnerOf returns the owner of the ticket at index
func (l *TicketLedger) OwnerOf(index uint32) (string, bool) {
	if index >= l.Len() {
		return "", false
	}
	owner := l.Owners[index]
	return owner, owner != ""
}

// PlayerCount returns the number of identities holding at least one ticket
func (l *TicketLedger) PlayerCount() uint32 {
	var n uint32
	for _, held := range l.Holdings {
		if held > 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the ledger
func (l TicketLedger) Clone() TicketLedger {
	owners := make([]string, len(l.Owners))
	copy(owners, l.Owners)
	holdings := make(map[string]uint32, len(l.Holdings))
	for k, v := range l.Holdings {
		holdings[k] = v
	}
	return TicketLedger{Owners: owners, Holdings: holdings}
}
