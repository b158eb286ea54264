package share

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/nachoo07/sistemaInterno-sub000/core"
)

var (
	// errors
	ErrNotFound            = errors.New("share not found")
	ErrAlreadyPaid         = errors.New("share is already paid")
	ErrTariffNotConfigured = errors.New("base tariff is not configured")
	ErrUpdateWindowClosed  = errors.New("pending shares can only be updated before late fees apply")

	errPaymentMethodRequired = "payment_method is required for paid shares"
)

type State string

const (
	StatePending State = "Pending"
	StateOverdue State = "Overdue"
	StatePaid    State = "Paid"
)

var States = []State{StatePending, StateOverdue, StatePaid}

func (s State) IsValid() bool {
	for _, st := range States {
		if s == st {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Cash"
	PaymentTransfer PaymentMethod = "Transfer"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentTransfer}

func (m PaymentMethod) IsValid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

// Share is a student's monthly due.
type Share struct {
	ID            string      `json:"id" db:"id"`
	StudentID     string      `json:"student_id" db:"student_id"`
	PeriodDate    time.Time   `json:"period_date" db:"period_date"` // first day of the billed month
	Amount        int64       `json:"amount" db:"amount"`
	State         State       `json:"state" db:"state"`
	PaymentMethod null.String `json:"payment_method" db:"payment_method"`
	PaymentDate   null.Time   `json:"payment_date" db:"payment_date"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (sh Share) IsPaid() bool { return sh.State == StatePaid }

// Period returns the billed month as YYYY-MM.
func (sh Share) Period() string { return sh.PeriodDate.Format(core.YearMonthLayout) }

func (sh *Share) clearPayment() {
	sh.PaymentMethod = null.String{}
	sh.PaymentDate = null.Time{}
}

// Repricing is a single row of a bulk amount/state update.
type Repricing struct {
	ID     string `db:"id"`
	Amount int64  `db:"amount"`
	State  State  `db:"state"`
}

// Change describes a share whose amount was corrected.
type Change struct {
	ShareID   string
	StudentID string
	Period    string
	OldAmount int64
	NewAmount int64
}

// UpdateShare defines what information may be provided to modify an existing Share.
type UpdateShare struct {
	Amount        *int64     `json:"amount" validate:"omitempty,gt=0"`
	State         *State     `json:"state" validate:"omitempty,sharestate"`
	PaymentMethod *string    `json:"payment_method" validate:"omitempty,paymentmethod"`
	PaymentDate   *time.Time `json:"payment_date"`
}

func (us *UpdateShare) Validate(validate *validator.Validate) error {
	if us.PaymentMethod != nil {
		m := core.CleanString(*us.PaymentMethod)
		us.PaymentMethod = &m
	}
	return validate.Struct(us)
}

// apply merges us into sh, keeping payment data consistent with the resulting state.
func (us UpdateShare) apply(sh Share, now time.Time) (Share, error) {
	if us.Amount != nil {
		sh.Amount = *us.Amount
	}
	if us.State != nil {
		sh.State = *us.State
	}
	if sh.State != StatePaid {
		sh.clearPayment()
		return sh, nil
	}

	if us.PaymentMethod != nil {
		sh.PaymentMethod = null.StringFrom(*us.PaymentMethod)
	}
	if !sh.PaymentMethod.Valid {
		return Share{}, core.NewValidationError(
			errors.New(errPaymentMethodRequired),
			core.FieldError{Field: "payment_method", Error: errPaymentMethodRequired},
		)
	}
	if us.PaymentDate != nil {
		sh.PaymentDate = null.TimeFrom(us.PaymentDate.UTC())
	} else if !sh.PaymentDate.Valid {
		sh.PaymentDate = null.TimeFrom(now)
	}
	return sh, nil
}

// PaymentRequest records the payment of a share.
type PaymentRequest struct {
	PaymentMethod string     `json:"payment_method" validate:"required,paymentmethod"`
	PaymentDate   *time.Time `json:"payment_date"`
	Amount        *int64     `json:"amount" validate:"omitempty,gt=0"` // amount actually charged, if different
}

func (pr *PaymentRequest) Validate(validate *validator.Validate) error {
	pr.PaymentMethod = core.CleanString(pr.PaymentMethod)
	return validate.Struct(pr)
}

type QueryFilter struct {
	StudentID string   `query:"student_id"`
	States    []string `query:"state" validate:"dive,sharestate"`
	Period    string   `query:"period" validate:"omitempty,yearmonth"` // YYYY-MM
}

func (qf *QueryFilter) Validate(validate *validator.Validate) error {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Period = core.CleanString(qf.Period)
	return validate.Struct(qf)
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && len(qf.States) == 0 && qf.Period == ""
}

// Matches reports whether sh satisfies every set field of qf.
func (qf *QueryFilter) Matches(sh Share) bool {
	if qf.StudentID != "" && sh.StudentID != qf.StudentID {
		return false
	}
	if qf.Period != "" && sh.Period() != qf.Period {
		return false
	}
	if len(qf.States) > 0 {
		for _, st := range qf.States {
			if State(st) == sh.State {
				return true
			}
		}
		return false
	}
	return true
}

// GenerationReport summarizes a monthly generation run.
type GenerationReport struct {
	Period        string
	Created       int
	Existing      int
	Skipped       int
	Failures      int
	Emailed       int
	EmailFailures int
}
