package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/nachoo07/sistemaInterno-sub000/apps"
	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
	appfs "github.com/nachoo07/sistemaInterno-sub000/fs"
	emailsvc "github.com/nachoo07/sistemaInterno-sub000/services/email"
	logsvc "github.com/nachoo07/sistemaInterno-sub000/services/logger"
	"github.com/nachoo07/sistemaInterno-sub000/storage/database"
	"github.com/nachoo07/sistemaInterno-sub000/storage/database/boiledrepos"
	"github.com/nachoo07/sistemaInterno-sub000/storage/database/sqlxrepos"
)

func main() {
	os.Exit(run())
}

func run() int {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	var db *sqlx.DB
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	// the database is only opened for commands that need it
	connect := func(cli *commandLine) error {
		if err := database.CreateIfNotExist(conf); err != nil {
			return errors.Wrap(err, "creating database")
		}
		var err error
		if db, err = database.Open(conf); err != nil {
			return errors.Wrap(err, "opening database")
		}

		var mailSvc core.EmailService
		if conf.Debug {
			mailSvc = emailsvc.NewConsoleService(conf)
		} else {
			mailSvc = emailsvc.NewSendgridService(conf, logger)
		}
		core.ParseEmailTemplates(appfs.FS, conf, logger)

		settingRepo := boiledrepos.NewSettingRepository(db)
		shareSvc, err := share.NewService(
			sqlxrepos.NewShareRepository(db),
			sqlxrepos.NewStudentRepository(db),
			settingRepo,
			mailSvc,
			logger,
			conf,
		)
		if err != nil {
			return errors.Wrap(err, "setting up share service")
		}

		cli.db = db.DB
		cli.shareSvc = shareSvc
		cli.settingRepo = settingRepo
		return nil
	}

	// start CLI
	cli := commandLine{
		conf:    conf,
		connect: connect,
		in:      os.Stdin,
		out:     os.Stdout,
	}
	return exitCode(cli.run(os.Args), logger)
}

// exitCode maps a command error to the process exit status: 0 on success, 1 otherwise.
func exitCode(err error, logger core.Logger) int {
	if err == nil {
		return 0
	}
	switch err.(type) {
	case *apps.ArgumentError:
		fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
	default:
		switch err {
		case errHelp: // usage already printed
		case errAborted:
			fmt.Fprintln(os.Stderr, err)
		default:
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
	}
	return 1
}
