package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/nachoo07/sistemaInterno-sub000/apps"
	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
)

var (
	stdinIsTerminal = func() bool { return term.IsTerminal(int(syscall.Stdin)) } // mockable

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted by user")
)

type billingService interface {
	GenerateMonthly(ctx context.Context) (share.GenerationReport, error)
	Revalue(ctx context.Context) (int, error)
	FixOverdue(ctx context.Context) ([]share.Change, error)
}

type commandLine struct {
	conf *core.Config
	// connect fills db, shareSvc and settingRepo. Only commands that need the database call it.
	connect     func(cli *commandLine) error
	db          *sql.DB
	shareSvc    billingService
	settingRepo setting.Repository
	in          io.Reader
	out         io.Writer
}

// requireDB connects once; later calls are no-ops.
func (cli *commandLine) requireDB() error {
	if cli.connect == nil {
		return nil
	}
	connect := cli.connect
	cli.connect = nil
	return connect(cli)
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]    - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  fixoverdue [-yes]         - reset every overdue share to its base amount + 10%")
	fmt.Fprintln(cli.out, "  generate                  - create the current month's shares now")
	fmt.Fprintln(cli.out, "  revalue                   - re-price pending and overdue shares now")
	fmt.Fprintln(cli.out, "  settariff -amount AMOUNT  - set the monthly base tariff")
	fmt.Fprintln(cli.out, "  token -subject NAME       - issue an admin API token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	fixOverdueCmd := flag.NewFlagSet("fixoverdue", flag.ContinueOnError)
	fixOverdueYes := fixOverdueCmd.Bool("yes", false, "Do not ask for confirmation.")

	setTariffCmd := flag.NewFlagSet("settariff", flag.ContinueOnError)
	setTariffAmount := setTariffCmd.Int64("amount", 0, "The new monthly base tariff, in whole currency units.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenSubject := tokenCmd.String("subject", "", "Who the token is issued to.")

	for _, fs := range []*flag.FlagSet{fixOverdueCmd, setTariffCmd, tokenCmd} {
		fs.SetOutput(cli.out)
	}

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		if err := cli.requireDB(); err != nil {
			return err
		}
		return cli.migrate(args[2:])

	case "fixoverdue":
		if err := fixOverdueCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if !*fixOverdueYes {
			if !stdinIsTerminal() {
				return apps.NewArgumentError("fixoverdue: -yes is required when not running in a terminal")
			}
			if !cli.confirm("Every overdue share will be set to its base amount + 10%. Continue?") {
				return errAborted
			}
		}
		if err := cli.requireDB(); err != nil {
			return err
		}
		return cli.fixOverdue(ctx)

	case "generate":
		if err := cli.requireDB(); err != nil {
			return err
		}
		return cli.generate(ctx)

	case "revalue":
		if err := cli.requireDB(); err != nil {
			return err
		}
		return cli.revalue(ctx)

	case "settariff":
		if err := setTariffCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *setTariffAmount <= 0 {
			setTariffCmd.Usage()
			return apps.NewArgumentError("settariff: -amount must be greater than 0")
		}
		if err := cli.requireDB(); err != nil {
			return err
		}
		return cli.setTariff(ctx, *setTariffAmount)

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		subject := core.CleanString(*tokenSubject)
		if subject == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(subject)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) confirm(question string) bool {
	fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(cli.in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
