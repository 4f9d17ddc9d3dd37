package cmd

import (
	"github.com/achilleasa/skytrace/log"
	"github.com/urfave/cli"
)

var logger = log.New("skytrace")

// Apply the global verbosity flags. -v and -vv take precedence over --log-level.
func setupLogging(ctx *cli.Context) {
	if name := ctx.GlobalString("log-level"); name != "" {
		level, err := log.ParseLevel(name)
		if err != nil {
			logger.Warningf("%v; keeping level %s", err, log.GetLevel())
		} else {
			log.SetLevel(level)
		}
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
