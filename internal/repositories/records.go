package repositories

import (
	"sort"
	"time"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// StateID is the document key of the lottery state singleton
const StateID = "lottery"

// StateRecord is the stored form of models.LotteryState
type StateRecord struct {
	ID             string        `bson:"_id" json:"id"`
	Phase          string        `bson:"phase" json:"phase"`
	Operator       string        `bson:"operator" json:"operator"`
	TicketPrice    models.Amount `bson:"ticket_price" json:"ticket_price"`
	CurrentRoundID uint32        `bson:"current_round_id" json:"current_round_id"`
	Rollover       bool          `bson:"rollover" json:"rollover"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
}

// HoldingRecord is one player's ticket count. Holdings are stored as a list
// because player identities may contain dots.
type HoldingRecord struct {
	Player  string `bson:"player" json:"player"`
	Tickets uint32 `bson:"tickets" json:"tickets"`
}

// RoundRecord is the stored form of models.Round, ledger included
type RoundRecord struct {
	ID                 uint32             `bson:"_id" json:"id"`
	Winner             string             `bson:"winner" json:"winner"`
	TicketsSold        uint32             `bson:"tickets_sold" json:"tickets_sold"`
	PlayerCount        uint32             `bson:"player_count" json:"player_count"`
	WinningTicketIndex uint32             `bson:"winning_ticket_index" json:"winning_ticket_index"`
	PooledAmount       models.Amount      `bson:"pooled_amount" json:"pooled_amount"`
	StartTime          time.Time          `bson:"start_time" json:"start_time"`
	EndTime            time.Time          `bson:"end_time" json:"end_time"`
	Halted             bool               `bson:"halted" json:"halted"`
	Settlement         *models.Settlement `bson:"settlement,omitempty" json:"settlement,omitempty"`
	Owners             []string           `bson:"owners" json:"owners"`
	Holdings           []HoldingRecord    `bson:"holdings" json:"holdings"`
}

// NewStateRecord converts a lottery state for storage
func NewStateRecord(s *models.LotteryState) StateRecord {
	return StateRecord{
		ID:             StateID,
		Phase:          s.Phase.String(),
		Operator:       s.Operator,
		TicketPrice:    s.TicketPrice,
		CurrentRoundID: s.CurrentRoundID,
		Rollover:       s.Rollover,
		UpdatedAt:      s.UpdatedAt,
	}
}

// Model converts the record back to a lottery state
func (r StateRecord) Model() (*models.LotteryState, error) {
	phase, err := models.ParsePhase(r.Phase)
	if err != nil {
		return nil, err
	}
	return &models.LotteryState{
		Phase:          phase,
		Operator:       r.Operator,
		TicketPrice:    r.TicketPrice,
		CurrentRoundID: r.CurrentRoundID,
		Rollover:       r.Rollover,
		UpdatedAt:      r.UpdatedAt,
	}, nil
}

// NewRoundRecord converts a round for storage
func NewRoundRecord(r *models.Round) RoundRecord {
	holdings := make([]HoldingRecord, 0, len(r.Ledger.Holdings))
	for player, tickets := range r.Ledger.Holdings {
		holdings = append(holdings, HoldingRecord{Player: player, Tickets: tickets})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Player < holdings[j].Player })

	owners := r.Ledger.Owners
	if owners == nil {
		owners = []string{}
	}

	return RoundRecord{
		ID:                 r.ID,
		Winner:             r.Winner,
		TicketsSold:        r.TicketsSold,
		PlayerCount:        r.PlayerCount,
		WinningTicketIndex: r.WinningTicketIndex,
		PooledAmount:       r.PooledAmount,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		Halted:             r.Halted,
		Settlement:         r.Settlement,
		Owners:             owners,
		Holdings:           holdings,
	}
}

// Model converts the record back to a round
func (r RoundRecord) Model() *models.Round {
	ledger := models.NewTicketLedger()
	ledger.Owners = append(ledger.Owners, r.Owners...)
	for _, h := range r.Holdings {
		ledger.Holdings[h.Player] = h.Tickets
	}

	return &models.Round{
		ID:                 r.ID,
		Winner:             r.Winner,
		TicketsSold:        r.TicketsSold,
		PlayerCount:        r.PlayerCount,
		WinningTicketIndex: r.WinningTicketIndex,
		PooledAmount:       r.PooledAmount,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		Halted:             r.Halted,
		Settlement:         r.Settlement,
		Ledger:             ledger,
	}
}
