package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"github.com/ArowuTest/raffle-backend/pkg/raffleapi"
)

// flags
var (
	jwtSecretFlag = &cli.StringFlag{
		Name:     "jwt-secret",
		Usage:    "secret the API verifies tokens with",
		EnvVars:  []string{"JWT_SECRET"},
		Required: true,
	}
	jwtExpiryFlag = &cli.DurationFlag{
		Name:    "jwt-expires-in",
		Usage:   "token lifetime",
		Value:   jwt.DefaultExpiry,
		EnvVars: []string{"JWT_EXPIRESIN"},
	}
	identityFlag = &cli.StringFlag{
		Name:     "identity",
		Usage:    "account the token authenticates",
		Required: true,
	}
	roundIDFlag = &cli.UintFlag{
		Name:  "id",
		Usage: "round id, 0 for the current round",
	}
	countFlag = &cli.UintFlag{
		Name:  "count",
		Usage: "number of tickets",
		Value: 1,
	}
	amountFlag = &cli.StringFlag{
		Name:  "amount",
		Usage: "attached amount, defaults to price x count",
	}
	priceFlag = &cli.StringFlag{
		Name:     "price",
		Usage:    "ticket price",
		Required: true,
	}
	operatorFlag = &cli.StringFlag{
		Name:     "operator",
		Usage:    "operator account",
		Required: true,
	}
	retryFailedFlag = &cli.BoolFlag{
		Name:  "retry-failed",
		Usage: "also resend transfers that failed before",
	}
)

// commands
var (
	tokenCmd = &cli.Command{
		Name:   "token",
		Usage:  "Issue a bearer token for an identity",
		Flags:  []cli.Flag{jwtSecretFlag, jwtExpiryFlag, identityFlag},
		Action: tokenAction,
	}
	statusCmd = &cli.Command{
		Name:   "status",
		Usage:  "Show the lottery state",
		Action: statusAction,
	}
	roundCmd = &cli.Command{
		Name:   "round",
		Usage:  "Show a round and its events",
		Flags:  []cli.Flag{roundIDFlag},
		Action: roundAction,
	}
	ticketsCmd = &cli.Command{
		Name:   "tickets",
		Usage:  "Show the tickets a player holds",
		Flags:  []cli.Flag{identityFlag, roundIDFlag},
		Action: ticketsAction,
	}
	initCmd = &cli.Command{
		Name:   "init",
		Usage:  "Initialise the lottery (contract identity only)",
		Flags:  []cli.Flag{operatorFlag, priceFlag},
		Action: initAction,
	}
	startCmd = &cli.Command{
		Name:   "start",
		Usage:  "Start a round",
		Action: startAction,
	}
	buyCmd = &cli.Command{
		Name:   "buy",
		Usage:  "Buy tickets in the active round",
		Flags:  []cli.Flag{countFlag, amountFlag},
		Action: buyAction,
	}
	drawCmd = &cli.Command{
		Name:   "draw",
		Usage:  "Draw the winner of the active round",
		Action: drawAction,
	}
	settleCmd = &cli.Command{
		Name:   "settle",
		Usage:  "Settle the payout of the drawn round",
		Action: settleAction,
	}
	setPriceCmd = &cli.Command{
		Name:   "set-price",
		Usage:  "Change the ticket price",
		Flags:  []cli.Flag{priceFlag},
		Action: setPriceAction,
	}
	payoutsCmd = &cli.Command{
		Name:   "payouts",
		Usage:  "List the payout transfers of a round",
		Flags:  []cli.Flag{roundIDFlag},
		Action: payoutsAction,
	}
	confirmCmd = &cli.Command{
		Name:   "confirm",
		Usage:  "Check sent payout transfers with the gateway",
		Action: confirmAction,
	}
	dispatchCmd = &cli.Command{
		Name:   "dispatch",
		Usage:  "Send pending payout transfers",
		Flags:  []cli.Flag{retryFailedFlag},
		Action: dispatchAction,
	}
)

func newClient(ctx *cli.Context) *raffleapi.Client {
	return raffleapi.NewClient(ctx.String(urlFlag.Name), ctx.String(tokenFlag.Name))
}

func tokenAction(ctx *cli.Context) error {
	tokens := jwt.NewTokenService(ctx.String(jwtSecretFlag.Name), ctx.Duration(jwtExpiryFlag.Name))
	token, err := tokens.Issue(ctx.String(identityFlag.Name))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func statusAction(ctx *cli.Context) error {
	state, err := newClient(ctx).State(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func roundAction(ctx *cli.Context) error {
	client := newClient(ctx)
	id, err := resolveRoundID(ctx, client)
	if err != nil {
		return err
	}

	round, err := client.Round(ctx.Context, id)
	if err != nil {
		return err
	}
	events, err := client.Events(ctx.Context, id)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{"round": round, "events": events})
}

func ticketsAction(ctx *cli.Context) error {
	player := ctx.String(identityFlag.Name)
	roundID, err := uint32Flag(ctx, roundIDFlag.Name)
	if err != nil {
		return err
	}
	count, err := newClient(ctx).PlayerTickets(ctx.Context, player, roundID)
	if err != nil {
		return err
	}
	fmt.Printf("%s holds %d tickets\n", player, count)
	return nil
}

func initAction(ctx *cli.Context) error {
	price, err := models.ParseAmount(ctx.String(priceFlag.Name))
	if err != nil {
		return err
	}
	state, err := newClient(ctx).Init(ctx.Context, ctx.String(operatorFlag.Name), price)
	if err != nil {
		return err
	}
	return printJSON(state)
}

func startAction(ctx *cli.Context) error {
	round, err := newClient(ctx).StartRound(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(round)
}

func buyAction(ctx *cli.Context) error {
	client := newClient(ctx)
	count, err := uint32Flag(ctx, countFlag.Name)
	if err != nil {
		return err
	}

	amount, err := attachedAmount(ctx, client, count, ctx.String(amountFlag.Name))
	if err != nil {
		return err
	}
	receipt, err := client.BuyTicket(ctx.Context, count, amount)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func drawAction(ctx *cli.Context) error {
	result, err := newClient(ctx).Draw(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func settleAction(ctx *cli.Context) error {
	result, err := newClient(ctx).Settle(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func setPriceAction(ctx *cli.Context) error {
	price, err := models.ParseAmount(ctx.String(priceFlag.Name))
	if err != nil {
		return err
	}
	updated, err := newClient(ctx).SetTicketPrice(ctx.Context, price)
	if err != nil {
		return err
	}
	fmt.Printf("ticket price is now %s\n", updated)
	return nil
}

func payoutsAction(ctx *cli.Context) error {
	client := newClient(ctx)
	id, err := resolveRoundID(ctx, client)
	if err != nil {
		return err
	}
	transfers, err := client.Transfers(ctx.Context, id)
	if err != nil {
		return err
	}
	return printJSON(transfers)
}

func dispatchAction(ctx *cli.Context) error {
	result, err := newClient(ctx).Dispatch(ctx.Context, ctx.Bool(retryFailedFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func confirmAction(ctx *cli.Context) error {
	result, err := newClient(ctx).Confirm(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// resolveRoundID returns the --id flag, or the current round when it is 0
func resolveRoundID(ctx *cli.Context, client *raffleapi.Client) (uint32, error) {
	id, err := uint32Flag(ctx, roundIDFlag.Name)
	if err != nil {
		return 0, err
	}
	if id != 0 {
		return id, nil
	}
	state, err := client.State(ctx.Context)
	if err != nil {
		return 0, err
	}
	if state.CurrentRoundID == 0 {
		return 0, fmt.Errorf("no round has been started")
	}
	return state.CurrentRoundID, nil
}

// attachedAmount parses raw, or prices count tickets at the current price when raw is empty
func attachedAmount(ctx *cli.Context, client *raffleapi.Client, count uint32, raw string) (models.Amount, error) {
	if raw != "" {
		return models.ParseAmount(raw)
	}
	price, err := client.TicketPrice(ctx.Context)
	if err != nil {
		return models.Amount{}, err
	}
	return price.MulCount(count)
}

// uint32Flag reads a uint flag that must fit a round id or ticket count
func uint32Flag(ctx *cli.Context, name string) (uint32, error) {
	v := ctx.Uint(name)
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("--%s %d is out of range, the maximum is %d", name, v, uint32(math.MaxUint32))
	}
	return uint32(v), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
