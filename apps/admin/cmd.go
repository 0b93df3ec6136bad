package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/hudumahq/huduma/core/company"
	"github.com/hudumahq/huduma/core/completion"
	"github.com/hudumahq/huduma/core/project"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db             *sqlx.DB
	companySvc     *company.Service
	projectRepo    project.Repository
	completionRepo completion.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run DB migrations (up, down, status, ...)")
	fmt.Println("  addcompany -name NAME -email EMAIL - provision a company; the access key is prompted next")
	fmt.Println("  seed - load local development fixtures")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addCompanyCmd := flag.NewFlagSet("addcompany", flag.ExitOnError)
	addCompanyName := addCompanyCmd.String("name", "", "The company's name.")
	addCompanyEmail := addCompanyCmd.String("email", "", "The company's contact email. The access key will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addcompany":
		if err := addCompanyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addCompanyName == "" || *addCompanyEmail == "" {
			addCompanyCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter access key:")
		key, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(key) == 0 {
			addCompanyCmd.Usage()
			return errHelp
		}
		return cli.addCompany(*addCompanyName, *addCompanyEmail, string(key))
	case "seed":
		return cli.seed()
	default:
		cli.printUsage()
		return errHelp
	}
}
