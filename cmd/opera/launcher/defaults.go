package launcher

import (
	"github.com/rony4d/go-asset-chain/opera"
)

// DefaultConfig returns the baseline configuration the launcher uses before
// the config file and CLI flags override it.

func DefaultConfig() Config {
	return Config{
		Node: NodeConfig{
			Name: "go-opera", //	Node identity shown in logs; lets operators tell instances apart.
			Logging: LoggingConfig{
				Verbosity: 3,      //	Log level numeric (0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
				Format:    "text", //	Log output format (text vs json).
				Color:     true,   //	ANSI colors; best disabled when piping to files.
			},
			Metrics: MetricsConfig{
				Enabled:  false,
				HTTPAddr: "127.0.0.1",
				HTTPPort: 6060,
			},
		},
		Opera: OperaConfig{
			Network: opera.MainNet,
		},
	}
}
