// Command sfl manages stock portfolios from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stockfolio/cmd"
)

// completion describes the command tree for shell completion.
var completion = &complete.Command{
	Flags: map[string]complete.Predictor{
		"repository-file":      predict.Files("*.csv"),
		"alphavantage-api-key": predict.Nothing,
	},
	Sub: map[string]*complete.Command{
		"create":    {Flags: map[string]complete.Predictor{"n": predict.Nothing, "s": predict.Nothing}},
		"buy":       tradeCompletion(),
		"sell":      tradeCompletion(),
		"invest":    {Flags: map[string]complete.Predictor{"p": predict.Nothing, "a": predict.Nothing, "w": predict.Nothing, "d": predict.Nothing, "every": predict.Set{"1d", "1w", "2w", "1m", "3m", "1y"}, "end": predict.Nothing, "f": predict.Nothing, "once": predict.Nothing}},
		"pending":   {Flags: map[string]complete.Predictor{"p": predict.Nothing, "d": predict.Nothing}},
		"rebalance": {Flags: map[string]complete.Predictor{"p": predict.Nothing, "w": predict.Nothing, "d": predict.Nothing, "f": predict.Nothing}},
		"value":     {Flags: map[string]complete.Predictor{"p": predict.Nothing, "d": predict.Nothing}},
		"holding":   {Flags: map[string]complete.Predictor{"p": predict.Nothing, "d": predict.Nothing}},
		"costbasis": {Flags: map[string]complete.Predictor{"p": predict.Nothing, "d": predict.Nothing}},
		"history":   {Flags: map[string]complete.Predictor{"p": predict.Nothing, "s": predict.Nothing, "e": predict.Nothing}},
		"export":    {Flags: map[string]complete.Predictor{"o": predict.Files("*.csv"), "simple": predict.Nothing, "d": predict.Nothing}},
		"import":    {Flags: map[string]complete.Predictor{"i": predict.Files("*.csv")}},
		"topic":     {Args: predict.Set{"readme", "csv-format", "plans", "valuation", "*"}},
	},
}

func tradeCompletion() *complete.Command {
	return &complete.Command{Flags: map[string]complete.Predictor{
		"p": predict.Nothing,
		"s": predict.Nothing,
		"v": predict.Nothing,
		"d": predict.Nothing,
		"f": predict.Nothing,
	}}
}

func main() {
	// Local development keys live in a .env file.
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if os.Getenv("SFL_DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// When invoked by the shell's completion machinery this prints
	// candidates and exits; otherwise it is a no-op.
	completion.Complete("sfl")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
