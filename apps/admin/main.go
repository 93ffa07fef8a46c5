package main

import (
	"log"
	"os"

	"github.com/trezcool/masomo-ar/core"
	"github.com/trezcool/masomo-ar/storage/database"
	sqlxrepos "github.com/trezcool/masomo-ar/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(database.Ping(db))

	// start CLI
	cli := commandLine{
		db:       db,
		conf:     conf,
		codeRepo: sqlxrepos.NewCodeRepository(db, conf.Database.Engine),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
