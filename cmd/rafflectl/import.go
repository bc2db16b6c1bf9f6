package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"github.com/ArowuTest/raffle-backend/pkg/raffleapi"
)

var fileFlag = &cli.StringFlag{
	Name:     "file",
	Usage:    "CSV file with player and count columns",
	Required: true,
}

var importCmd = &cli.Command{
	Name:   "import",
	Usage:  "Buy tickets for every row of a CSV file, each as its own player",
	Flags:  []cli.Flag{fileFlag, jwtSecretFlag, jwtExpiryFlag},
	Action: importAction,
}

type tokenIssuer interface {
	Issue(identity string) (string, error)
}

// ImportSummary counts the outcome of an import
type ImportSummary struct {
	Purchased int
	Tickets   uint64
	Failed    int
	Skipped   int
}

func importAction(ctx *cli.Context) error {
	logger := logrus.New()

	file, err := os.Open(ctx.String(fileFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, rowErrors, err := utils.ReadPurchases(file)
	if err != nil {
		return err
	}
	for _, msg := range rowErrors {
		logger.Warn(msg)
	}

	tokens := jwt.NewTokenService(ctx.String(jwtSecretFlag.Name), ctx.Duration(jwtExpiryFlag.Name))
	summary := importPurchases(ctx.Context, newClient(ctx), tokens, rows, logger)
	summary.Skipped = len(rowErrors)

	logger.WithFields(logrus.Fields{
		"purchased": summary.Purchased,
		"tickets":   summary.Tickets,
		"failed":    summary.Failed,
		"skipped":   summary.Skipped,
	}).Info("Import finished")
	if summary.Failed > 0 {
		return fmt.Errorf("%d purchases failed", summary.Failed)
	}
	return nil
}

// importPurchases buys each row's tickets with a token minted for the row's player.
// Rows without an amount pay the current price.
func importPurchases(ctx context.Context, client *raffleapi.Client, tokens tokenIssuer, rows []utils.PurchaseRow, logger *logrus.Logger) ImportSummary {
	var summary ImportSummary

	var price *models.Amount
	for _, row := range rows {
		log := logger.WithFields(logrus.Fields{"line": row.Line, "player": row.Player})

		amount := row.Amount
		if amount.IsZero() {
			if price == nil {
				p, err := client.TicketPrice(ctx)
				if err != nil {
					log.WithError(err).Error("Failed to read ticket price")
					summary.Failed++
					continue
				}
				price = &p
			}
			var err error
			if amount, err = price.MulCount(row.Count); err != nil {
				log.WithError(err).Error("Ticket cost overflows")
				summary.Failed++
				continue
			}
		}

		token, err := tokens.Issue(row.Player)
		if err != nil {
			log.WithError(err).Error("Failed to issue token")
			summary.Failed++
			continue
		}
		receipt, err := client.WithToken(token).BuyTicket(ctx, row.Count, amount)
		if err != nil {
			log.WithError(err).WithField("kind", models.KindOf(err)).Error("Purchase rejected")
			summary.Failed++
			continue
		}

		summary.Purchased++
		summary.Tickets += uint64(row.Count)
		log.WithFields(logrus.Fields{"round_id": receipt.RoundID, "first_ticket": receipt.FirstTicket}).Debug("Tickets purchased")
	}
	return summary
}
