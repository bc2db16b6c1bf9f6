package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ArowuTest/raffle-backend/internal/models"
)

// PurchaseRow is one ticket purchase read from a CSV file
type PurchaseRow struct {
	Line   int
	Player string
	Count  uint32
	// Amount is optional; when zero the caller pays price×count
	Amount models.Amount
}

// ReadPurchases reads purchases from CSV with a header row. Recognised columns:
// player (or account, identity), count (or tickets) and an optional amount.
// Invalid rows are reported in rowErrors and skipped.
func ReadPurchases(r io.Reader) (rows []PurchaseRow, rowErrors []string, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	playerIdx := findColumnIndex(header, []string{"player", "account", "identity"})
	countIdx := findColumnIndex(header, []string{"count", "tickets", "ticket count"})
	amountIdx := findColumnIndex(header, []string{"amount", "attached amount", "payment"})
	if playerIdx == -1 || countIdx == -1 {
		return nil, nil, fmt.Errorf("CSV needs player and count columns, got %v", header)
	}

	rows = []PurchaseRow{}
	rowErrors = []string{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		player := strings.TrimSpace(record[playerIdx])
		if player == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: no player", line))
			continue
		}
		count, err := ParseTicketCount(record[countIdx])
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		row := PurchaseRow{Line: line, Player: player, Count: count}
		if amountIdx != -1 && strings.TrimSpace(record[amountIdx]) != "" {
			row.Amount, err = models.ParseAmount(record[amountIdx])
			if err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
				continue
			}
		}
		rows = append(rows, row)
	}
	return rows, rowErrors, nil
}

// findColumnIndex finds the index of a column by possible names
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}
