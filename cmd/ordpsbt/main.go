// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/BoostyLabs/ordpsbt/bitcoin/mempool"
	"github.com/BoostyLabs/ordpsbt/bitcoin/networks"
)

// application holds state shared by commands.
type application struct {
	ctx    context.Context
	config config
	params *networks.Params
	log    *zap.Logger
	out    io.Writer
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			return
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses arguments with optional INI config and executes the chosen command.
func run(ctx context.Context, args []string, out io.Writer) error {
	app := &application{ctx: ctx, out: out}

	// config file path has to be known before the INI values are applied.
	var preConfig config
	preParser := flags.NewParser(&preConfig, flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return err
	}

	parser := newParser(app)
	if preConfig.ConfigFile != "" {
		if err := flags.NewIniParser(parser).ParseFile(preConfig.ConfigFile); err != nil {
			return errors.Wrapf(err, "load config %s", preConfig.ConfigFile)
		}
	}

	_, err := parser.ParseArgs(args)

	return err
}

// newParser registers global options and commands.
func newParser(app *application) *flags.Parser {
	parser := flags.NewParser(&app.config, flags.HelpFlag|flags.PassDoubleDash)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if command == nil {
			return nil
		}

		if err := app.init(); err != nil {
			return err
		}
		defer func() { _ = app.log.Sync() }()

		return command.Execute(args)
	}

	mustAddCommand(parser, "self-send", "Build self-send psbt",
		"Spends the first unspent output of the address back to the same address.",
		&selfSendCommand{app: app})
	mustAddCommand(parser, "dual-party", "Build payment and ordinal transfer psbt",
		"Spends the first payment and the first ordinal outputs into two recipients plus change.",
		&dualPartyCommand{app: app})
	mustAddCommand(parser, "decode", "Decode psbt",
		"Prints inputs and outputs of base64 encoded psbt.",
		&decodeCommand{app: app})

	return parser
}

func mustAddCommand(parser *flags.Parser, name, short, long string, data interface{}) {
	if _, err := parser.AddCommand(name, short, long, data); err != nil {
		panic(err)
	}
}

// init validates config and sets up logger.
func (app *application) init() (err error) {
	if app.params, err = app.config.validate(); err != nil {
		return err
	}

	if app.log, err = newLogger(app.config.LogLevel); err != nil {
		return errors.Wrap(err, "create logger")
	}

	app.log.Debug("config loaded",
		zap.String("network", app.params.Network.String()),
		zap.String("explorer", app.config.Explorer.BaseURL))

	return nil
}

// explorer returns configured UTXO explorer client.
func (app *application) explorer() *mempool.Client {
	return mempool.NewClient(app.config.Explorer, app.log.Named("mempool"))
}
