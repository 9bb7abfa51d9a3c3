package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags holds knobs specific to the local node instance.

func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Custom node name used in logs",
		},
	}
}

// AllFlags returns every flag group accepted by the node and its commands.
func AllFlags() []cli.Flag {
	var all []cli.Flag
	all = append(all, NetworkFlags()...)
	all = append(all, CommonFlags()...)
	all = append(all, NodeFlags()...)
	return all
}
