package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "tokengate-cli",
		Usage: "administrative CLI for the tokengated server",
		Flags: []cli.Flag{urlFlag, managerTokenFlag},
		Commands: []*cli.Command{
			{
				Name:   "extensions",
				Usage:  "list all registered extensions",
				Action: listExtensions,
			},
			{
				Name:   "register",
				Usage:  "register an extension",
				Flags:  []cli.Flag{addressFlag},
				Action: registerExtension,
			},
			{
				Name:   "remove",
				Usage:  "remove a registered extension",
				Flags:  []cli.Flag{addressFlag},
				Action: removeExtension,
			},
			{
				Name:   "enable",
				Usage:  "enable a disabled extension",
				Flags:  []cli.Flag{addressFlag},
				Action: enableExtension,
			},
			{
				Name:   "disable",
				Usage:  "disable an enabled extension",
				Flags:  []cli.Flag{addressFlag},
				Action: disableExtension,
			},
			{
				Name:   "upgrade",
				Usage:  "upgrade the token logic",
				Flags:  []cli.Flag{versionFlag},
				Action: upgradeLogic,
			},
			{
				Name:   "issue",
				Usage:  "issue token units to an account",
				Flags:  []cli.Flag{addressFlag, partitionFlag, amountFlag},
				Action: issue,
			},
			{
				Name:   "transfer",
				Usage:  "submit a transfer or redemption",
				Flags:  []cli.Flag{fromFlag, toFlag, partitionFlag, amountFlag, operatorFlag},
				Action: transfer,
			},
			{
				Name:   "balance",
				Usage:  "get the balance of an account",
				Flags:  []cli.Flag{addressFlag, partitionFlag},
				Action: balance,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listExtensions(c *cli.Context) error {
	return get(c, "/v1/extensions")
}

func registerExtension(c *cli.Context) error {
	return post(c, "/v1/admin/extensions", map[string]any{
		"address": c.String(addressFlagName),
	})
}

func removeExtension(c *cli.Context) error {
	return del(c, fmt.Sprintf("/v1/admin/extensions/%s", c.String(addressFlagName)))
}

func enableExtension(c *cli.Context) error {
	return post(c, fmt.Sprintf(
		"/v1/admin/extensions/%s/enable", c.String(addressFlagName),
	), nil)
}

func disableExtension(c *cli.Context) error {
	return post(c, fmt.Sprintf(
		"/v1/admin/extensions/%s/disable", c.String(addressFlagName),
	), nil)
}

func upgradeLogic(c *cli.Context) error {
	return post(c, "/v1/admin/logic", map[string]any{
		"version": c.String(versionFlagName),
	})
}

func issue(c *cli.Context) error {
	return post(c, "/v1/admin/issuances", map[string]any{
		"address":   c.String(addressFlagName),
		"partition": c.String(partitionFlagName),
		"amount":    c.Uint64(amountFlagName),
	})
}

func transfer(c *cli.Context) error {
	return post(c, "/v1/transfers", map[string]any{
		"from":      c.String(fromFlagName),
		"to":        c.String(toFlagName),
		"partition": c.String(partitionFlagName),
		"amount":    c.Uint64(amountFlagName),
		"operator":  c.String(operatorFlagName),
	})
}

func balance(c *cli.Context) error {
	return get(c, fmt.Sprintf(
		"/v1/accounts/%s/balance?partition=%s",
		c.String(addressFlagName), c.String(partitionFlagName),
	))
}
