package share

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nachoo07/sistemaInterno-sub000/core"
)

func TestPolicy_BaseAmount(t *testing.T) {
	tests := []struct {
		name    string
		tariff  int64
		sibling bool
		want    int64
	}{
		{name: "no discount", tariff: 30000, want: 30000},
		{name: "sibling discount", tariff: 30000, sibling: true, want: 27000},
		{name: "sibling discount rounds half up", tariff: 12345, sibling: true, want: 11111}, // 11110.5
		{name: "sibling discount rounds down", tariff: 10001, sibling: true, want: 9001},     // 9000.9 -> 9001
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Round(DefaultPolicy.BaseAmount(tt.tariff, tt.sibling)); got != tt.want {
				t.Errorf("failed! BaseAmount() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestPolicy_LateAmount(t *testing.T) {
	base := DefaultPolicy.BaseAmount(30000, false)
	tests := []struct {
		day  int
		want int64
	}{
		{day: 1, want: 30000},
		{day: 10, want: 30000},
		{day: 11, want: 33000},
		{day: 20, want: 33000},
		{day: 21, want: 36000},
		{day: 31, want: 36000},
	}
	for _, tt := range tests {
		if got := Round(DefaultPolicy.LateAmount(base, tt.day)); got != tt.want {
			t.Errorf("failed! LateAmount(day %d) = %v; want %v", tt.day, got, tt.want)
		}
	}
}

func TestPolicy_LateAmount_roundsOnce(t *testing.T) {
	// 9000.9 * 1.2 = 10801.08; rounding the base first would give 9001 * 1.2 = 10801.2
	base := DefaultPolicy.BaseAmount(10001, true)
	if got := Round(DefaultPolicy.LateAmount(base, 25)); got != 10801 {
		t.Errorf("failed! LateAmount() = %v; want 10801", got)
	}
	if !base.Equal(decimal.RequireFromString("9000.9")) {
		t.Errorf("failed! BaseAmount() = %v; want 9000.9", base)
	}
}

func TestPolicy_IsLate(t *testing.T) {
	for day, want := range map[int]bool{1: false, 10: false, 11: true, 21: true} {
		if got := DefaultPolicy.IsLate(day); got != want {
			t.Errorf("failed! IsLate(%d) = %v; want %v", day, got, want)
		}
	}
}

func TestPolicy_CorrectedAmount(t *testing.T) {
	tests := []struct {
		sibling bool
		want    int64
	}{
		{sibling: false, want: 33000},
		{sibling: true, want: 29700},
	}
	for _, tt := range tests {
		base := DefaultPolicy.BaseAmount(30000, tt.sibling)
		if got := Round(DefaultPolicy.CorrectedAmount(base)); got != tt.want {
			t.Errorf("failed! CorrectedAmount(sibling %v) = %v; want %v", tt.sibling, got, tt.want)
		}
	}
}

func TestPolicy_Tiers(t *testing.T) {
	tiers := DefaultPolicy.Tiers(DefaultPolicy.BaseAmount(30000, false))
	want := []struct {
		label  string
		amount int64
	}{
		{"Day 1 to 10", 30000},
		{"Day 11 to 20", 33000},
		{"From day 21", 36000},
	}
	if len(tiers) != len(want) {
		t.Fatalf("failed! len(Tiers()) = %d; want %d", len(tiers), len(want))
	}
	for i, w := range want {
		if tiers[i].Label() != w.label || tiers[i].Amount != w.amount {
			t.Errorf("failed! tier %d = %s/%d; want %s/%d", i, tiers[i].Label(), tiers[i].Amount, w.label, w.amount)
		}
	}
}

func TestPolicy_OverdueAmount(t *testing.T) {
	base := DefaultPolicy.BaseAmount(30000, false)
	tests := []struct {
		day  int
		want int64
	}{
		{day: 1, want: 33000},
		{day: 10, want: 33000},
		{day: 11, want: 33000},
		{day: 20, want: 33000},
		{day: 21, want: 36000},
		{day: 31, want: 36000},
	}
	for _, tt := range tests {
		if got := Round(DefaultPolicy.OverdueAmount(base, tt.day)); got != tt.want {
			t.Errorf("failed! OverdueAmount(day %d) = %v; want %v", tt.day, got, tt.want)
		}
	}
}

func TestNewPolicy(t *testing.T) {
	conf := core.NewTestConfig()
	p := NewPolicy(conf)
	if p.OnTimeUntilDay != 10 || p.FirstLateUntilDay != 20 ||
		!p.SiblingDiscount.Equal(DefaultPolicy.SiblingDiscount) ||
		!p.FirstLateSurcharge.Equal(DefaultPolicy.FirstLateSurcharge) ||
		!p.SecondLateSurcharge.Equal(DefaultPolicy.SecondLateSurcharge) ||
		!p.CorrectionSurcharge.Equal(DefaultPolicy.CorrectionSurcharge) {
		t.Errorf("failed! NewPolicy(test config) = %+v; want %+v", p, DefaultPolicy)
	}

	conf.Billing.OnTimeUntilDay = 5
	conf.Billing.FirstLateUntilDay = 15
	conf.Billing.SecondLateSurchargePct = 25
	tiers := NewPolicy(conf).Tiers(decimal.NewFromInt(20000))
	want := []string{"Day 1 to 5", "Day 6 to 15", "From day 16"}
	wantAmounts := []int64{20000, 22000, 25000}
	for i := range want {
		if tiers[i].Label() != want[i] || tiers[i].Amount != wantAmounts[i] {
			t.Errorf("failed! tier %d = %s/%d; want %s/%d", i, tiers[i].Label(), tiers[i].Amount, want[i], wantAmounts[i])
		}
	}
}

func TestPolicy_check(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr bool
	}{
		{name: "default", mutate: func(p *Policy) {}},
		{name: "no on-time days", mutate: func(p *Policy) { p.OnTimeUntilDay = 0 }, wantErr: true},
		{name: "empty first tier", mutate: func(p *Policy) { p.FirstLateUntilDay = p.OnTimeUntilDay }, wantErr: true},
		{name: "second tier past february", mutate: func(p *Policy) { p.FirstLateUntilDay = 28 }, wantErr: true},
		{name: "free siblings", mutate: func(p *Policy) { p.SiblingDiscount = percent(100) }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy
			tt.mutate(&p)
			if err := p.check(); (err != nil) != tt.wantErr {
				t.Errorf("failed! check() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}
