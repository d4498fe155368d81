// avatarsrv looks up the avatar service of email domains with
// DNS-over-HTTPS.
//
//	avatarsrv lookup libravatar.org
//	avatarsrv --doh-server dns.google instance alice@example.org
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	avatars "github.com/elypia/auto-avatars"
	"github.com/elypia/auto-avatars/cache"
)

var flagDoHServer = &cli.StringFlag{
	Name:    "doh-server",
	Value:   avatars.CloudflareDoH,
	Usage:   "DNS-over-HTTPS server, host or host:port",
	EnvVars: []string{"AVATARS_DOH_SERVER"},
}

var flagTimeout = &cli.DurationFlag{
	Name:    "timeout",
	Value:   avatars.DefaultTimeout,
	Usage:   "Maximum time to wait for the DoH server",
	EnvVars: []string{"AVATARS_TIMEOUT"},
}

var flagFallback = &cli.StringFlag{
	Name:    "fallback",
	Value:   avatars.DefaultHost,
	Usage:   "Avatar service to use when a domain has none",
	EnvVars: []string{"AVATARS_FALLBACK"},
}

var flagVerbose = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "Log debug messages",
}

func newResolver(cCtx *cli.Context) *avatars.Resolver {
	level := slog.LevelInfo
	if cCtx.Bool(flagVerbose.Name) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	r := avatars.NewResolver(cache.New(), logger)
	r.Timeout = cCtx.Duration(flagTimeout.Name)
	return r
}

func main() {
	app := &cli.App{
		Name:  "avatarsrv",
		Usage: "Find the avatar service of email domains",
		Flags: []cli.Flag{
			flagDoHServer,
			flagTimeout,
			flagVerbose,
		},
		Commands: []*cli.Command{
			{
				Name:      "lookup",
				Usage:     "Print the decoded SRV response for each domain",
				ArgsUsage: "<domain>...",
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() == 0 {
						return cli.Exit("at least one domain is required", 1)
					}
					r := newResolver(cCtx)
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					for _, domain := range cCtx.Args().Slice() {
						msg, err := r.Discover(cCtx.Context, domain, cCtx.String(flagDoHServer.Name))
						if err != nil {
							return fmt.Errorf("%s: %w", domain, err)
						}
						if err := enc.Encode(msg); err != nil {
							return err
						}
					}
					return nil
				},
			},
			{
				Name:      "instance",
				Usage:     "Print the avatar service URL for each email address",
				ArgsUsage: "<email>...",
				Flags: []cli.Flag{
					flagFallback,
				},
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() == 0 {
						return cli.Exit("at least one email address is required", 1)
					}
					r := newResolver(cCtx)
					for _, email := range cCtx.Args().Slice() {
						u, err := r.InstanceURL(cCtx.Context, email, cCtx.String(flagDoHServer.Name), cCtx.String(flagFallback.Name))
						if err != nil {
							return err
						}
						fmt.Printf("%s %s\n", email, u)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "avatarsrv: %v\n", err)
		os.Exit(1)
	}
}
