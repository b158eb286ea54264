package share

import (
	"fmt"
	"net/mail"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/student"
)

const shareCreatedTemplate = "share_created"

type (
	tierData struct {
		Label  string
		Amount string
	}

	shareCreatedData struct {
		StudentName    string
		Period         string
		Amount         string
		Tiers          []tierData
		OnTimeUntilDay int
	}
)

func (svc *Service) newShareCreatedMessage(to mail.Address, st student.Student, sh Share, base decimal.Decimal) *core.EmailMessage {
	tiers := svc.policy.Tiers(base)
	data := shareCreatedData{
		StudentName:    st.FullName(),
		Period:         sh.PeriodDate.Format("January 2006"),
		Amount:         formatAmount(sh.Amount),
		Tiers:          make([]tierData, 0, len(tiers)),
		OnTimeUntilDay: svc.policy.OnTimeUntilDay,
	}
	for _, t := range tiers {
		data.Tiers = append(data.Tiers, tierData{Label: t.Label(), Amount: formatAmount(t.Amount)})
	}
	return &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("Your share for %s", data.Period),
		TemplateName: shareCreatedTemplate,
		TemplateData: data,
	}
}

// formatAmount groups thousands with dots: 36000 -> "36.000".
func formatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}
