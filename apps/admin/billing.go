package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	echoapi "github.com/nachoo07/sistemaInterno-sub000/apps/api/echo"
	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
)

func (cli *commandLine) fixOverdue(ctx context.Context) error {
	changes, err := cli.shareSvc.FixOverdue(ctx)
	if err != nil {
		return errors.Wrap(err, "correcting overdue shares")
	}
	for _, c := range changes {
		fmt.Fprintf(cli.out, "share %s (student %s, %s): %d -> %d\n", c.ShareID, c.StudentID, c.Period, c.OldAmount, c.NewAmount)
	}
	fmt.Fprintf(cli.out, "%d overdue shares corrected\n", len(changes))
	return nil
}

func (cli *commandLine) generate(ctx context.Context) error {
	report, err := cli.shareSvc.GenerateMonthly(ctx)
	if err != nil {
		return errors.Wrap(err, "generating shares")
	}
	fmt.Fprintf(cli.out, "%s: created=%d existing=%d skipped=%d failures=%d emailed=%d email_failures=%d\n",
		report.Period, report.Created, report.Existing, report.Skipped, report.Failures, report.Emailed, report.EmailFailures)
	if report.Failures > 0 {
		return errors.Errorf("%d shares could not be created", report.Failures)
	}
	return nil
}

func (cli *commandLine) revalue(ctx context.Context) error {
	n, err := cli.shareSvc.Revalue(ctx)
	if err != nil {
		return errors.Wrap(err, "revaluing shares")
	}
	fmt.Fprintf(cli.out, "%d shares re-priced\n", n)
	return nil
}

func (cli *commandLine) setTariff(ctx context.Context, amount int64) error {
	if err := setting.SetInt(ctx, cli.settingRepo, cli.conf.Billing.TariffKey, amount); err != nil {
		return errors.Wrap(err, "setting base tariff")
	}
	fmt.Fprintf(cli.out, "base tariff set to %d\n", amount)
	return nil
}

func (cli *commandLine) token(subject string) error {
	token, err := echoapi.GenerateToken(cli.conf, echoapi.NewClaims(cli.conf, subject, true))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
