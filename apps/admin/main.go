package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ifcet/aula/core"
	"github.com/ifcet/aula/core/student"
	logsvc "github.com/ifcet/aula/services/logger"
	"github.com/ifcet/aula/storage/database"
	sqlxrepos "github.com/ifcet/aula/storage/database/sqlx"
)

func main() {
	conf := core.Conf

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("ADMIN"), conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Connect(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to database: %v", err), err)
	}
	defer db.Close()

	// start CLI
	stRepo := sqlxrepos.NewStudentRepository(db)
	cli := commandLine{
		db:       db.DB,
		stRepo:   stRepo,
		crRepo:   sqlxrepos.NewCourseRepository(db),
		stSvc:    student.NewService(stRepo),
		fixtures: conf.Storage.FixturesDir,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("admin %v", os.Args[1:]), err)
			fmt.Printf("\nerror: %s\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}
