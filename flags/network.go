package flags

import (
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-asset-chain/opera"
)

// NetworkFlags selects the protocol network the node follows.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network to follow (" + strings.Join(opera.Networks(), "|") + ")",
			Value: opera.MainNet,
		},
	}
}

// RulesFlags are the flags of the rules command.
func RulesFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "height",
			Usage: "Block height to resolve the ruleset at",
		},
	}
}
