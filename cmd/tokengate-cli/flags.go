package main

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	urlFlagName          = "url"
	managerTokenFlagName = "manager-token"
	addressFlagName      = "address"
	partitionFlagName    = "partition"
	amountFlagName       = "amount"
	versionFlagName      = "version"
	fromFlagName         = "from"
	toFlagName           = "to"
	operatorFlagName     = "operator"

	defaultPort = 7070
)

var (
	urlFlag = &cli.StringFlag{
		Name:  urlFlagName,
		Usage: "the url where to reach the tokengated server",
		Value: defaultURL(),
	}
	managerTokenFlag = &cli.StringFlag{
		Name:  managerTokenFlagName,
		Usage: "manager token for administrative operations",
		Value: viper.GetString("manager-token"),
	}
	addressFlag = &cli.StringFlag{
		Name:     addressFlagName,
		Usage:    "extension or account address",
		Required: true,
	}
	partitionFlag = &cli.StringFlag{
		Name:  partitionFlagName,
		Usage: "token partition, empty for the plain fungible balance",
	}
	amountFlag = &cli.Uint64Flag{
		Name:     amountFlagName,
		Usage:    "amount of token units",
		Required: true,
	}
	versionFlag = &cli.StringFlag{
		Name:     versionFlagName,
		Usage:    "logic version to upgrade to",
		Required: true,
	}
	fromFlag = &cli.StringFlag{
		Name:     fromFlagName,
		Usage:    "source address",
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:  toFlagName,
		Usage: "destination address, empty for a redemption",
	}
	operatorFlag = &cli.StringFlag{
		Name:  operatorFlagName,
		Usage: "operator submitting the transfer on behalf of the source",
	}
)

func defaultURL() string {
	if url := viper.GetString("url"); url != "" {
		return url
	}
	return fmt.Sprintf("http://127.0.0.1:%d", defaultPort)
}
