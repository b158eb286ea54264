package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nachoo07/sistemaInterno-sub000/core"
)

var orderingParam = "ordering"

// Ordering is bound from a query param like `?ordering=-period_date,amount`.
type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads the ordering param, dropping fields that are not allowed.
func (ord *Ordering) Bind(ctx echo.Context, allowed ...string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	if len(allowed) > 0 {
		ord.Orderings = core.SafeOrderings(ord.Orderings, allowed...)
	}
}
