package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/trezcool/masomo-ar/core"
	"github.com/trezcool/masomo-ar/core/sharecode"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sql.DB
	conf     *core.Config
	codeRepo sharecode.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  sweep                  - purge expired share codes from the durable store")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "sweep":
		return cli.sweep()
	default:
		cli.printUsage()
		return errHelp
	}
}
