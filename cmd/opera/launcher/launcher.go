package launcher

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-asset-chain/flags"
	"github.com/rony4d/go-asset-chain/integration"
	"github.com/rony4d/go-asset-chain/rpcapi"
)

// Launch parses args, assembles the protocol configuration and runs the
// requested command.
func Launch(args []string) error {
	return newApp().Run(args)
}

func newApp() *cli.App {
	app := flags.NewApp("Asset Chain Opera node")
	app.Flags = flags.AllFlags()
	app.Action = operaMain
	app.Description = `
Without a command the node assembles and verifies the protocol schedule of
the configured network. With --metrics it then serves metrics until it is
interrupted; otherwise it exits once the schedule is verified.`
	app.Commands = []cli.Command{
		{
			Name:      "rules",
			Usage:     "Print the ruleset in force at a block height",
			Action:    rulesCommand,
			Flags:     append(flags.AllFlags(), flags.RulesFlags()...),
			Description: `
Resolves the protocol ruleset of the configured network at --height,
including operator activations from --config, and prints it as JSON.`,
		},
		{
			Name:   "dumpconfig",
			Usage:  "Show configuration values",
			Action: dumpConfigCommand,
			Flags:  flags.AllFlags(),
		},
	}
	return app
}

// setup loads the configuration and the logger every command starts from.
func setup(ctx *cli.Context) (Config, *logrus.Logger, error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return cfg, nil, err
	}
	log, err := newLogger(cfg.Node.Logging, ctx.App.ErrWriter)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func operaMain(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	nodeLog := log.WithField("node", cfg.Node.Name)

	resolver, err := integration.MakeResolver(cfg.Opera.Settings(), nodeLog)
	if err != nil {
		nodeLog.WithError(err).Error("Invalid protocol configuration")
		return err
	}
	if !cfg.Node.Metrics.Enabled {
		nodeLog.WithField("forkId", resolver.ForkID().String()).
			Info("Protocol configuration verified, metrics disabled, exiting")
		return nil
	}

	srv := startMetrics(cfg.Node.Metrics, nodeLog)
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	nodeLog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func rulesCommand(ctx *cli.Context) error {
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	resolver, err := integration.MakeResolver(cfg.Opera.Settings(), log)
	if err != nil {
		return err
	}

	view := rpcapi.NewRulesetView(resolver, idx.Block(ctx.Uint64("height")))
	out, err := rpcapi.NewJSONSerializer().Marshal(view)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(append(out, '\n'))
	return err
}

func dumpConfigCommand(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	return dumpConfig(ctx.App.Writer, cfg)
}
