package share

import (
	"context"
	"fmt"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
	"github.com/nachoo07/sistemaInterno-sub000/core/student"
)

var NowFunc = time.Now // mockable

type Repository interface {
	// CreateShareIfAbsent inserts sh unless a share already exists for (sh.StudentID, sh.PeriodDate).
	// The returned bool reports whether sh was inserted.
	CreateShareIfAbsent(ctx context.Context, sh Share) (Share, bool, error)
	GetShare(ctx context.Context, id string) (Share, error)
	QueryShares(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Share, error)
	QuerySharesByState(ctx context.Context, states ...State) ([]Share, error)
	UpdateShare(ctx context.Context, sh Share) (Share, error)
	// RepriceShares writes every update in a single atomic operation and never touches paid shares.
	RepriceShares(ctx context.Context, updates []Repricing, updatedAt time.Time) (int, error)
	DeleteShare(ctx context.Context, id string) error
}

type Service struct {
	repo          Repository
	studentRepo   student.Repository
	settingRepo   setting.Repository
	mailSvc       core.EmailService
	logger        core.Logger
	policy        Policy
	loc           *time.Location
	tariffKey     string
	defaultTariff int64
}

func NewService(
	repo Repository,
	studentRepo student.Repository,
	settingRepo setting.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) (*Service, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(studentRepo, "studentRepo"),
		vala.IsNotNil(settingRepo, "settingRepo"),
		vala.IsNotNil(mailSvc, "mailSvc"),
		vala.IsNotNil(logger, "logger"),
		vala.IsNotNil(conf, "conf"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "share.NewService")
	}
	err = vala.BeginValidation().Validate(
		vala.IsNotNil(conf.Billing.Location, "conf.Billing.Location"),
		vala.StringNotEmpty(conf.Billing.TariffKey, "conf.Billing.TariffKey"),
		vala.GreaterThan(int(conf.Billing.DefaultTariff), 0, "conf.Billing.DefaultTariff"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "share.NewService")
	}
	policy := NewPolicy(conf)
	if err = policy.check(); err != nil {
		return nil, errors.Wrap(err, "share.NewService: pricing policy")
	}

	return &Service{
		repo:          repo,
		studentRepo:   studentRepo,
		settingRepo:   settingRepo,
		mailSvc:       mailSvc,
		logger:        logger,
		policy:        policy,
		loc:           conf.Billing.Location,
		tariffKey:     conf.Billing.TariffKey,
		defaultTariff: conf.Billing.DefaultTariff,
	}, nil
}

func (svc *Service) Policy() Policy { return svc.policy }

func (svc *Service) now() time.Time {
	return NowFunc().In(svc.loc)
}

// baseTariff reads the configured tariff. When strict is false a missing or malformed
// value falls back to the default tariff.
func (svc *Service) baseTariff(ctx context.Context, strict bool) (int64, error) {
	tariff, err := setting.GetInt(ctx, svc.settingRepo, svc.tariffKey)
	switch errors.Cause(err) {
	case nil:
		return tariff, nil
	case setting.ErrNotFound, setting.ErrInvalidValue:
		if strict {
			return 0, errors.Wrapf(ErrTariffNotConfigured, "setting %q: %v", svc.tariffKey, err)
		}
		svc.logger.Warn(fmt.Sprintf("setting %q: %v; using default tariff %d", svc.tariffKey, err, svc.defaultTariff))
		return svc.defaultTariff, nil
	default:
		return 0, errors.Wrap(err, "reading base tariff")
	}
}

// studentsFor resolves the students of shares with one lookup.
func (svc *Service) studentsFor(ctx context.Context, shares []Share) (map[string]student.Student, error) {
	seen := make(map[string]struct{}, len(shares))
	ids := make([]string, 0, len(shares))
	for _, sh := range shares {
		if _, ok := seen[sh.StudentID]; !ok {
			seen[sh.StudentID] = struct{}{}
			ids = append(ids, sh.StudentID)
		}
	}
	students, err := svc.studentRepo.QueryStudentsByID(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return student.IndexByID(students), nil
}

// GenerateMonthly creates the current month's share of every active student that has none yet,
// and notifies the newly billed students by email. A failure for one student does not stop the others.
func (svc *Service) GenerateMonthly(ctx context.Context) (GenerationReport, error) {
	now := svc.now()
	period := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, svc.loc)
	report := GenerationReport{Period: period.Format(core.YearMonthLayout)}

	tariff, err := svc.baseTariff(ctx, false)
	if err != nil {
		return report, err
	}
	students, err := svc.studentRepo.QueryActiveStudents(ctx)
	if err != nil {
		return report, errors.Wrap(err, "querying active students")
	}

	for _, st := range students {
		if err = ctx.Err(); err != nil {
			return report, err
		}
		if !st.IsActive() || st.ID == "" {
			report.Skipped++
			continue
		}

		base := svc.policy.BaseAmount(tariff, st.HasSiblingDiscount)
		sh, created, err := svc.repo.CreateShareIfAbsent(ctx, Share{
			StudentID:  st.ID,
			PeriodDate: period,
			Amount:     Round(base),
			State:      StatePending,
			CreatedAt:  now.UTC(),
			UpdatedAt:  now.UTC(),
		})
		if err != nil {
			report.Failures++
			svc.logger.Error(
				fmt.Sprintf("creating share for student %s (%s): %v", st.ID, report.Period, err),
				err, map[string]interface{}{"student_id": st.ID, "period": report.Period},
			)
			continue
		}
		if !created {
			report.Existing++
			continue
		}
		report.Created++

		addr, ok := st.MailAddress()
		if !ok {
			continue
		}
		msg := svc.newShareCreatedMessage(addr, st, sh, base)
		if err = svc.mailSvc.SendMessage(ctx, msg); err != nil {
			report.EmailFailures++
			svc.logger.Error(
				fmt.Sprintf("notifying student %s of share %s: %v", st.ID, sh.ID, err),
				err, map[string]interface{}{"student_id": st.ID, "share_id": sh.ID},
			)
			continue
		}
		report.Emailed++
	}

	svc.logger.Info(fmt.Sprintf(
		"shares generated for %s: created=%d existing=%d skipped=%d failures=%d emailed=%d email_failures=%d",
		report.Period, report.Created, report.Existing, report.Skipped, report.Failures, report.Emailed, report.EmailFailures,
	))
	return report, nil
}

// Revalue re-prices every pending or overdue share from the current tariff and day of month.
// Late shares become overdue and keep at least the first late fee. Amounts are recomputed
// from the base, never from the stored amount.
func (svc *Service) Revalue(ctx context.Context) (int, error) {
	tariff, err := svc.baseTariff(ctx, false)
	if err != nil {
		return 0, err
	}
	shares, err := svc.repo.QuerySharesByState(ctx, StatePending, StateOverdue)
	if err != nil {
		return 0, errors.Wrap(err, "querying unpaid shares")
	}
	if len(shares) == 0 {
		svc.logger.Info("revaluation: no pending or overdue shares")
		return 0, nil
	}
	students, err := svc.studentsFor(ctx, shares)
	if err != nil {
		return 0, err
	}

	now := svc.now()
	day := now.Day()
	late := svc.policy.IsLate(day)
	updates := make([]Repricing, 0, len(shares))
	for _, sh := range shares {
		st, ok := students[sh.StudentID]
		if !ok {
			svc.logger.Warn(fmt.Sprintf("revaluation: student %s of share %s not found; skipped", sh.StudentID, sh.ID))
			continue
		}
		state := sh.State
		if late {
			state = StateOverdue
		}
		base := svc.policy.BaseAmount(tariff, st.HasSiblingDiscount)
		amount := svc.policy.LateAmount(base, day)
		if state == StateOverdue {
			amount = svc.policy.OverdueAmount(base, day)
		}
		updates = append(updates, Repricing{ID: sh.ID, Amount: Round(amount), State: state})
	}
	if len(updates) == 0 {
		return 0, nil
	}

	n, err := svc.repo.RepriceShares(ctx, updates, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "repricing shares")
	}
	svc.logger.Info(fmt.Sprintf("revaluation: %d shares updated on day %d", n, day))
	return n, nil
}

// FixOverdue resets every overdue share to its base amount plus the correction surcharge.
// Unlike the recurring jobs, it refuses to run without a configured tariff.
func (svc *Service) FixOverdue(ctx context.Context) ([]Change, error) {
	tariff, err := svc.baseTariff(ctx, true)
	if err != nil {
		return nil, err
	}
	shares, err := svc.repo.QuerySharesByState(ctx, StateOverdue)
	if err != nil {
		return nil, errors.Wrap(err, "querying overdue shares")
	}
	if len(shares) == 0 {
		svc.logger.Info("correction: no overdue shares")
		return nil, nil
	}
	students, err := svc.studentsFor(ctx, shares)
	if err != nil {
		return nil, err
	}

	changes := make([]Change, 0, len(shares))
	updates := make([]Repricing, 0, len(shares))
	for _, sh := range shares {
		st, ok := students[sh.StudentID]
		if !ok {
			svc.logger.Warn(fmt.Sprintf("correction: student %s of share %s not found; skipped", sh.StudentID, sh.ID))
			continue
		}
		amount := Round(svc.policy.CorrectedAmount(svc.policy.BaseAmount(tariff, st.HasSiblingDiscount)))
		updates = append(updates, Repricing{ID: sh.ID, Amount: amount, State: StateOverdue})
		changes = append(changes, Change{
			ShareID:   sh.ID,
			StudentID: sh.StudentID,
			Period:    sh.Period(),
			OldAmount: sh.Amount,
			NewAmount: amount,
		})
	}
	if len(updates) == 0 {
		return nil, nil
	}

	if _, err = svc.repo.RepriceShares(ctx, updates, svc.now().UTC()); err != nil {
		return nil, errors.Wrap(err, "repricing overdue shares")
	}
	for _, c := range changes {
		svc.logger.Info(fmt.Sprintf("correction: share %s (student %s, %s): %d -> %d",
			c.ShareID, c.StudentID, c.Period, c.OldAmount, c.NewAmount))
	}
	return changes, nil
}

// UpdatePending re-prices every pending share with the current tariff.
// It is only allowed while no late fee applies; afterwards ErrUpdateWindowClosed is returned.
func (svc *Service) UpdatePending(ctx context.Context) (int, error) {
	now := svc.now()
	day := now.Day()
	if svc.policy.IsLate(day) {
		return 0, ErrUpdateWindowClosed
	}

	tariff, err := svc.baseTariff(ctx, false)
	if err != nil {
		return 0, err
	}
	shares, err := svc.repo.QuerySharesByState(ctx, StatePending)
	if err != nil {
		return 0, errors.Wrap(err, "querying pending shares")
	}
	if len(shares) == 0 {
		return 0, nil
	}
	students, err := svc.studentsFor(ctx, shares)
	if err != nil {
		return 0, err
	}

	updates := make([]Repricing, 0, len(shares))
	for _, sh := range shares {
		st, ok := students[sh.StudentID]
		if !ok {
			svc.logger.Warn(fmt.Sprintf("pending update: student %s of share %s not found; skipped", sh.StudentID, sh.ID))
			continue
		}
		base := svc.policy.BaseAmount(tariff, st.HasSiblingDiscount)
		updates = append(updates, Repricing{
			ID:     sh.ID,
			Amount: Round(svc.policy.LateAmount(base, day)),
			State:  StatePending,
		})
	}
	if len(updates) == 0 {
		return 0, nil
	}

	n, err := svc.repo.RepriceShares(ctx, updates, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "repricing pending shares")
	}
	svc.logger.Info(fmt.Sprintf("pending update: %d shares re-priced", n))
	return n, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Share, error) {
	return svc.repo.QueryShares(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Share, error) {
	return svc.repo.GetShare(ctx, id)
}

// Update applies a manual change to a single share.
func (svc *Service) Update(ctx context.Context, id string, us UpdateShare) (Share, error) {
	sh, err := svc.repo.GetShare(ctx, id)
	if err != nil {
		return Share{}, err
	}
	now := svc.now().UTC()
	if sh, err = us.apply(sh, now); err != nil {
		return Share{}, err
	}
	sh.UpdatedAt = now
	return svc.repo.UpdateShare(ctx, sh)
}

// RecordPayment settles a share. Paid shares are never re-priced afterwards.
func (svc *Service) RecordPayment(ctx context.Context, id string, pr PaymentRequest) (Share, error) {
	sh, err := svc.repo.GetShare(ctx, id)
	if err != nil {
		return Share{}, err
	}
	if sh.IsPaid() {
		return Share{}, ErrAlreadyPaid
	}

	now := svc.now().UTC()
	paidAt := now
	if pr.PaymentDate != nil {
		paidAt = pr.PaymentDate.UTC()
	}
	if pr.Amount != nil {
		sh.Amount = *pr.Amount
	}
	sh.State = StatePaid
	sh.PaymentMethod = null.StringFrom(pr.PaymentMethod)
	sh.PaymentDate = null.TimeFrom(paidAt)
	sh.UpdatedAt = now
	return svc.repo.UpdateShare(ctx, sh)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteShare(ctx, id)
}
