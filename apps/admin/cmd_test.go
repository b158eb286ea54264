package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachoo07/sistemaInterno-sub000/apps"
	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
	"github.com/nachoo07/sistemaInterno-sub000/core/student"
	appfs "github.com/nachoo07/sistemaInterno-sub000/fs"
	emailsvc "github.com/nachoo07/sistemaInterno-sub000/services/email"
	inmemdb "github.com/nachoo07/sistemaInterno-sub000/storage/database/inmem"
	testutil "github.com/nachoo07/sistemaInterno-sub000/tests"
)

type studentStore interface {
	student.Repository
	CreateStudent(ctx context.Context, st student.Student) (student.Student, error)
}

type fixture struct {
	cli      *commandLine
	out      *bytes.Buffer
	shares   share.Repository
	students studentStore
	settings setting.Repository
}

func setup(t *testing.T, stdin string) *fixture {
	conf := core.NewTestConfig()
	core.ParseEmailTemplates(appfs.FS, conf, testutil.NewLogger())
	db := inmemdb.Open()
	f := &fixture{
		out:      new(bytes.Buffer),
		shares:   inmemdb.NewShareRepository(db),
		students: inmemdb.NewStudentRepository(db),
		settings: inmemdb.NewSettingRepository(db),
	}

	shareSvc, err := share.NewService(f.shares, f.students, f.settings, emailsvc.NewConsoleServiceMock(conf), testutil.NewLogger(), conf)
	require.NoError(t, err)

	f.cli = &commandLine{
		conf:        conf,
		shareSvc:    shareSvc,
		settingRepo: f.settings,
		in:          strings.NewReader(stdin),
		out:         f.out,
	}
	return f
}

func mockTerminal(t *testing.T, isTerminal bool) {
	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return isTerminal }
	t.Cleanup(func() { stdinIsTerminal = orig })
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		if errors.Cause(err) != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil || err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	f := setup(t, "")

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "token: no subject", args: []string{"token"}, wantErr: errHelp},
		{name: "token: unknown flag", args: []string{"token", "-lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, f.cli.run(args))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t, "")

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_receipts", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, f.cli.run(args))
		})
	}
}

func Test_commandLine_fixOverdue(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		terminal   bool
		stdin      string
		noTariff   bool
		wantErr    error
		wantArgErr bool
		wantAmount int64
	}{
		{name: "confirmed with -yes", args: []string{"-yes"}, wantAmount: 33000},
		{name: "confirmed on terminal", terminal: true, stdin: "y\n", wantAmount: 33000},
		{name: "declined on terminal", terminal: true, stdin: "n\n", wantErr: errAborted, wantAmount: 36000},
		{name: "no answer", terminal: true, wantErr: errAborted, wantAmount: 36000},
		{name: "not a terminal without -yes", wantArgErr: true, wantAmount: 36000},
		{name: "tariff not configured", args: []string{"-yes"}, noTariff: true, wantErr: share.ErrTariffNotConfigured, wantAmount: 36000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.stdin)
			mockTerminal(t, tt.terminal)
			testutil.FreezeTime(t, time.Date(2026, 10, 25, 12, 0, 0, 0, time.UTC))
			if !tt.noTariff {
				testutil.SetTariff(t, f.settings, f.cli.conf.Billing.TariffKey, 30000)
			}
			st := testutil.CreateStudent(t, f.students, "Juan", "Perez", "", false, true)
			sh := testutil.CreateShare(t, f.shares, st.ID, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), 36000, share.StateOverdue)

			err := f.cli.run(append([]string{"admin", "fixoverdue"}, tt.args...))
			switch {
			case tt.wantArgErr:
				_, ok := err.(*apps.ArgumentError)
				assert.True(t, ok, "want *apps.ArgumentError, got %v", err)
			default:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			}

			got, err := f.shares.GetShare(context.Background(), sh.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, got.Amount)
			if tt.wantAmount == 33000 {
				assert.Contains(t, f.out.String(), "36000 -> 33000")
				assert.Contains(t, f.out.String(), "1 overdue shares corrected")
			}
		})
	}
}

func Test_commandLine_generateAndRevalue(t *testing.T) {
	f := setup(t, "")
	testutil.FreezeTime(t, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	testutil.SetTariff(t, f.settings, f.cli.conf.Billing.TariffKey, 30000)
	st := testutil.CreateStudent(t, f.students, "Ana", "Diaz", "ana@test.ar", true, true)

	require.NoError(t, f.cli.run([]string{"admin", "generate"}))
	assert.Contains(t, f.out.String(), "2026-10: created=1 existing=0 skipped=0 failures=0 emailed=1 email_failures=0")

	require.NoError(t, f.cli.run([]string{"admin", "revalue"}))
	assert.Contains(t, f.out.String(), "1 shares re-priced")

	shares, err := f.shares.QueryShares(context.Background(), &share.QueryFilter{StudentID: st.ID}, nil)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, int64(29700), shares[0].Amount)
	assert.Equal(t, share.StateOverdue, shares[0].State)
}

func Test_commandLine_setTariff(t *testing.T) {
	f := setup(t, "")

	for _, args := range [][]string{{"settariff"}, {"settariff", "-amount", "0"}, {"settariff", "-amount", "-5"}} {
		err := f.cli.run(append([]string{"admin"}, args...))
		if _, ok := err.(*apps.ArgumentError); !ok {
			t.Errorf("cli.run(%v) error = %v, want *apps.ArgumentError", args, err)
		}
	}
	assert.Equal(t, errHelp, f.cli.run([]string{"admin", "settariff", "-amount", "lol"}))

	require.NoError(t, f.cli.run([]string{"admin", "settariff", "-amount", "32000"}))
	tariff, err := setting.GetInt(context.Background(), f.settings, f.cli.conf.Billing.TariffKey)
	require.NoError(t, err)
	assert.Equal(t, int64(32000), tariff)
}

func Test_commandLine_token(t *testing.T) {
	f := setup(t, "")
	require.NoError(t, f.cli.run([]string{"admin", "token", "-subject", "secretaria"}))
	token := strings.TrimSpace(f.out.String())
	assert.Len(t, strings.Split(token, "."), 3)
}

func Test_exitCode(t *testing.T) {
	logger := testutil.NewLogger()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ok", want: 0},
		{name: "help", err: errHelp, want: 1},
		{name: "bad argument", err: apps.NewArgumentError("lol"), want: 1},
		{name: "aborted", err: errAborted, want: 1},
		{name: "failure", err: errors.New("db down"), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err, logger); got != tt.want {
				t.Errorf("failed! exitCode() = %v; want %v", got, tt.want)
			}
		})
	}
}

func Test_commandLine_connectsOnDemand(t *testing.T) {
	errDown := errors.New("connection refused")
	tests := []struct {
		name        string
		args        []string
		wantConnect bool
	}{
		{name: "token", args: []string{"token", "-subject", "secretaria"}},
		{name: "help", args: []string{"lol"}},
		{name: "settariff usage", args: []string{"settariff", "-amount", "0"}},
		{name: "migrate", args: []string{"migrate", "status"}, wantConnect: true},
		{name: "fixoverdue", args: []string{"fixoverdue", "-yes"}, wantConnect: true},
		{name: "generate", args: []string{"generate"}, wantConnect: true},
		{name: "revalue", args: []string{"revalue"}, wantConnect: true},
		{name: "settariff", args: []string{"settariff", "-amount", "32000"}, wantConnect: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, "")
			connects := 0
			f.cli.connect = func(*commandLine) error {
				connects++
				return errDown
			}

			err := f.cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantConnect {
				assert.Equal(t, 1, connects)
				assert.Equal(t, errDown, errors.Cause(err))
			} else {
				assert.Equal(t, 0, connects)
				assert.NotEqual(t, errDown, errors.Cause(err))
			}
		})
	}

	t.Run("connects once", func(t *testing.T) {
		f := setup(t, "")
		connects := 0
		f.cli.connect = func(*commandLine) error {
			connects++
			return nil
		}
		require.NoError(t, f.cli.run([]string{"admin", "revalue"}))
		require.NoError(t, f.cli.run([]string{"admin", "revalue"}))
		assert.Equal(t, 1, connects)
	})
}
