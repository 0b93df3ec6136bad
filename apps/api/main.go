package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/hudumahq/huduma/api/echo"
	"github.com/hudumahq/huduma/core"
	"github.com/hudumahq/huduma/core/access"
	"github.com/hudumahq/huduma/core/company"
	"github.com/hudumahq/huduma/core/completion"
	"github.com/hudumahq/huduma/core/project"
	emailsvc "github.com/hudumahq/huduma/services/email"
	logsvc "github.com/hudumahq/huduma/services/logger"
	"github.com/hudumahq/huduma/storage/database"
	sqlxrepos "github.com/hudumahq/huduma/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	companyRepo := sqlxrepos.NewCompanyRepository(db)
	projectRepo := sqlxrepos.NewProjectRepository(db)
	completionRepo := sqlxrepos.NewCompletionRepository(db)

	companySvc := company.NewService(companyRepo)
	completionSvc := completion.NewService(
		completionRepo, projectRepo, companyRepo, access.NewChecker(), mailSvc, conf,
	)
	projectSvc := project.NewService(projectRepo, completionSvc, companyRepo)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(echoapi.ServerDeps{
		Addr:          conf.Server.Address(),
		Conf:          conf,
		Logger:        logger,
		CompanySvc:    companySvc,
		ProjectSvc:    projectSvc,
		CompletionSvc: completionSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
