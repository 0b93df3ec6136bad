package main

import (
	"log"
	"os"

	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/company"
	"github.com/hudumahq/huduma/storage/database"
	sqlxrepos "github.com/hudumahq/huduma/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	companyRepo := sqlxrepos.NewCompanyRepository(db)
	projectRepo := sqlxrepos.NewProjectRepository(db)
	completionRepo := sqlxrepos.NewCompletionRepository(db)

	// start CLI
	cli := commandLine{
		db:             db,
		companySvc:     company.NewService(companyRepo),
		projectRepo:    projectRepo,
		completionRepo: completionRepo,
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
