package share

import (
	"fmt"

	"github.com/kat-co/vala"
	"github.com/shopspring/decimal"

	"github.com/nachoo07/sistemaInterno-sub000/core"
)

// Policy holds the pricing rules for shares. Every call site (notification,
// revaluation, manual re-pricing, correction) reads the same thresholds.
type Policy struct {
	SiblingDiscount     decimal.Decimal // fraction off the tariff
	OnTimeUntilDay      int             // last day of the month without surcharge
	FirstLateUntilDay   int             // last day of the month of the first surcharge tier
	FirstLateSurcharge  decimal.Decimal
	SecondLateSurcharge decimal.Decimal
	CorrectionSurcharge decimal.Decimal // applied by the overdue correction
}

var DefaultPolicy = Policy{
	SiblingDiscount:     percent(10),
	OnTimeUntilDay:      10,
	FirstLateUntilDay:   20,
	FirstLateSurcharge:  percent(10),
	SecondLateSurcharge: percent(20),
	CorrectionSurcharge: percent(10),
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// NewPolicy builds a Policy from the billing configuration. Percentages are whole numbers.
func NewPolicy(conf *core.Config) Policy {
	b := conf.Billing
	return Policy{
		SiblingDiscount:     percent(b.SiblingDiscountPct),
		OnTimeUntilDay:      b.OnTimeUntilDay,
		FirstLateUntilDay:   b.FirstLateUntilDay,
		FirstLateSurcharge:  percent(b.FirstLateSurchargePct),
		SecondLateSurcharge: percent(b.SecondLateSurchargePct),
		CorrectionSurcharge: percent(b.CorrectionSurchargePct),
	}
}

func percent(pct int) decimal.Decimal {
	return decimal.New(int64(pct), -2)
}

// check rejects thresholds that would leave a tier empty or past the shortest month.
func (p Policy) check() error {
	return vala.BeginValidation().Validate(
		vala.GreaterThan(p.OnTimeUntilDay, 0, "OnTimeUntilDay"),
		vala.GreaterThan(p.FirstLateUntilDay, p.OnTimeUntilDay, "FirstLateUntilDay"),
		vala.GreaterThan(28, p.FirstLateUntilDay, "FirstLateUntilDay"),
		vala.GreaterThan(100, int(p.SiblingDiscount.Mul(hundred).IntPart()), "SiblingDiscount"),
	).Check()
}

// BaseAmount is the monthly amount before late fees. Not rounded.
func (p Policy) BaseAmount(tariff int64, hasSiblingDiscount bool) decimal.Decimal {
	base := decimal.NewFromInt(tariff)
	if hasSiblingDiscount {
		return base.Mul(one.Sub(p.SiblingDiscount))
	}
	return base
}

// IsLate reports whether a share still unpaid on day is overdue.
func (p Policy) IsLate(day int) bool {
	return day > p.OnTimeUntilDay
}

// Surcharge returns the late fee fraction that applies on day of the month.
func (p Policy) Surcharge(day int) decimal.Decimal {
	switch {
	case day <= p.OnTimeUntilDay:
		return decimal.Zero
	case day <= p.FirstLateUntilDay:
		return p.FirstLateSurcharge
	default:
		return p.SecondLateSurcharge
	}
}

// LateAmount applies the surcharge of day to base. Not rounded.
func (p Policy) LateAmount(base decimal.Decimal, day int) decimal.Decimal {
	return base.Mul(one.Add(p.Surcharge(day)))
}

// OverdueAmount is the amount of a share that is already overdue on day. The surcharge
// never drops below the first late tier, also on the on-time days of a later month. Not rounded.
func (p Policy) OverdueAmount(base decimal.Decimal, day int) decimal.Decimal {
	return base.Mul(one.Add(decimal.Max(p.Surcharge(day), p.FirstLateSurcharge)))
}

// CorrectedAmount is the amount the overdue correction sets. Not rounded.
func (p Policy) CorrectedAmount(base decimal.Decimal) decimal.Decimal {
	return base.Mul(one.Add(p.CorrectionSurcharge))
}

// Tier is a payment window and the amount owed when paying within it.
type Tier struct {
	FromDay int
	ToDay   int // 0 means end of month
	Amount  int64
}

func (t Tier) Label() string {
	if t.ToDay == 0 {
		return fmt.Sprintf("From day %d", t.FromDay)
	}
	return fmt.Sprintf("Day %d to %d", t.FromDay, t.ToDay)
}

// Tiers lists the three payment windows of a month for base.
func (p Policy) Tiers(base decimal.Decimal) []Tier {
	return []Tier{
		{FromDay: 1, ToDay: p.OnTimeUntilDay, Amount: Round(p.LateAmount(base, 1))},
		{FromDay: p.OnTimeUntilDay + 1, ToDay: p.FirstLateUntilDay, Amount: Round(p.LateAmount(base, p.OnTimeUntilDay+1))},
		{FromDay: p.FirstLateUntilDay + 1, Amount: Round(p.LateAmount(base, p.FirstLateUntilDay+1))},
	}
}

// Round rounds d to the nearest unit, halves away from zero. Only used right before persisting.
func Round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
