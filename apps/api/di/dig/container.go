package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/nachoo07/sistemaInterno-sub000/apps/api/echo"
	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
	"github.com/nachoo07/sistemaInterno-sub000/core/student"
	emailsvc "github.com/nachoo07/sistemaInterno-sub000/services/email"
	logsvc "github.com/nachoo07/sistemaInterno-sub000/services/logger"
	"github.com/nachoo07/sistemaInterno-sub000/services/scheduler"
	"github.com/nachoo07/sistemaInterno-sub000/storage/database"
	"github.com/nachoo07/sistemaInterno-sub000/storage/database/boiledrepos"
	"github.com/nachoo07/sistemaInterno-sub000/storage/database/sqlxrepos"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type SchedulerParam struct {
	dig.In
	Conf   *core.Config
	Logger core.Logger `name:"schedLogger"`
}

func newRollbarLogger(prefix string, conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, prefix, log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newLogger(conf *core.Config) core.Logger {
	return newRollbarLogger("API : ", conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return newRollbarLogger("DB : ", conf)
}

func newSchedLogger(conf *core.Config) core.Logger {
	return newRollbarLogger("SCHED : ", conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
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

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newShareRepository(db *sqlx.DB) share.Repository {
	return sqlxrepos.NewShareRepository(db)
}

func newStudentRepository(db *sqlx.DB) student.Repository {
	return sqlxrepos.NewStudentRepository(db)
}

func newSettingRepository(db *sqlx.DB) setting.Repository {
	return boiledrepos.NewSettingRepository(db)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newShareAPIService(svc *share.Service) echoapi.ShareService {
	return svc
}

func newScheduler(param SchedulerParam) *scheduler.Scheduler {
	return scheduler.New(param.Conf.Billing.Location, param.Logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newSchedLogger, dig.Name("schedLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newShareRepository))
	must(c.Provide(newStudentRepository))
	must(c.Provide(newSettingRepository))
	must(c.Provide(share.NewService))
	must(c.Provide(newShareAPIService))
	must(c.Provide(newScheduler))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
