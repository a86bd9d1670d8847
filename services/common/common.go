package common

import (
	"github.com/urfave/cli"
)

var (
	DomainFlag = "domain"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   DomainFlag,
			Usage:  "public base url",
			Value:  "http://localhost:8080",
			EnvVar: "DOMAIN",
		},
	)
}
