package main

import (
	"context"
	"time"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
	"github.com/nachoo07/sistemaInterno-sub000/services/metrics"
	"github.com/nachoo07/sistemaInterno-sub000/services/scheduler"
)

const (
	jobGenerate       = "generate_shares"
	jobRevalue        = "revalue_shares"
	jobStartupRevalue = "startup_revalue_shares"
	opRevalue         = "revalue"
)

type billingService interface {
	GenerateMonthly(ctx context.Context) (share.GenerationReport, error)
	Revalue(ctx context.Context) (int, error)
}

type jobScheduler interface {
	Schedule(name, spec string, task scheduler.Task) error
	ScheduleOnce(name string, delay time.Duration, task scheduler.Task)
}

// registerBillingJobs schedules the monthly generation, the daily revaluation
// and a one-shot revaluation shortly after startup.
func registerBillingJobs(sched jobScheduler, svc billingService, conf *core.Config) error {
	generate := func(ctx context.Context) error {
		report, err := svc.GenerateMonthly(ctx)
		metrics.AddSharesGenerated(report.Created)
		metrics.AddNotifications(report.Emailed, report.EmailFailures)
		return err
	}
	revalue := func(ctx context.Context) error {
		n, err := svc.Revalue(ctx)
		metrics.AddSharesRepriced(opRevalue, n)
		return err
	}

	if err := sched.Schedule(jobGenerate, conf.Billing.MonthlySpec, generate); err != nil {
		return err
	}
	if err := sched.Schedule(jobRevalue, conf.Billing.DailySpec, revalue); err != nil {
		return err
	}
	sched.ScheduleOnce(jobStartupRevalue, conf.Billing.StartupDelay, revalue)
	return nil
}
