package services

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DrawInput is what a RandomSource may mix into a roll
type DrawInput struct {
	RoundID     uint32
	TicketsSold uint32
	PlayerCount uint32
	Time        time.Time
}

// RandomSource produces the roll a winning ticket is picked from
type RandomSource interface {
	Roll(in DrawInput) (uint64, error)
}

// SeededSource hashes a configured seed with the round's public data.
// It is NOT unpredictable: anyone who knows the seed can compute every roll,
// and the operator can pick the draw time. Replace it with a verifiable
// source before running with real stakes.
type SeededSource struct {
	key [32]byte
}

// NewSeededSource creates a SeededSource from seed
func NewSeededSource(seed string) *SeededSource {
	return &SeededSource{key: blake2b.Sum256([]byte(seed))}
}

// Roll returns the first 8 bytes of a keyed blake2b hash over the draw input
func (s *SeededSource) Roll(in DrawInput) (uint64, error) {
	h, err := blake2b.New256(s.key[:])
	if err != nil {
		return 0, fmt.Errorf("failed to create hash: %w", err)
	}

	var buf [20]byte
	binary.BigEndian.PutUint32(buf[0:4], in.RoundID)
	binary.BigEndian.PutUint32(buf[4:8], in.TicketsSold)
	binary.BigEndian.PutUint32(buf[8:12], in.PlayerCount)
	binary.BigEndian.PutUint64(buf[12:20], uint64(in.Time.UnixNano()))
	h.Write(buf[:])

	return binary.BigEndian.Uint64(h.Sum(nil)[:8]), nil
}
