package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	LogLevel string `help:"Log level (debug, info, warn, error). Overrides the config file." placeholder:"LEVEL"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play a match against the bot"`
	Serve    ServeCmd         `cmd:"" help:"Run the referee server"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate many matches between a scripted player and the bot"`
	Rules    RulesCmd         `cmd:"" help:"Print the rules"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rpsplus"),
		kong.Description("Rock-Paper-Scissors-Plus: best of three against a bot, with one bomb each"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
