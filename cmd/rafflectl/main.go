package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// flags
var (
	urlFlag = &cli.StringFlag{
		Name:    "url",
		Usage:   "raffle API base url",
		Value:   "http://localhost:8080",
		EnvVars: []string{"RAFFLE_URL"},
	}
	tokenFlag = &cli.StringFlag{
		Name:    "token",
		Usage:   "bearer token of the caller",
		EnvVars: []string{"RAFFLE_TOKEN"},
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "rafflectl"
	app.Usage = "Command line client of the raffle API"
	app.Version = fmt.Sprintf("%s (%s, %s)", version, commit, date)
	app.Flags = []cli.Flag{urlFlag, tokenFlag}
	app.Commands = append(
		cli.Commands{},
		tokenCmd,
		statusCmd,
		roundCmd,
		ticketsCmd,
		initCmd,
		startCmd,
		buyCmd,
		drawCmd,
		settleCmd,
		setPriceCmd,
		payoutsCmd,
		dispatchCmd,
		confirmCmd,
		importCmd,
	)
	return app
}
