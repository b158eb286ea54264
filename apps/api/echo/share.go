package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
)

var shareOrderFields = []string{"period_date", "created_at", "updated_at", "amount", "state", "student_id"}

// ShareService is what the shares API needs from the billing engine.
type ShareService interface {
	Query(ctx context.Context, filter *share.QueryFilter, ordering []core.DBOrdering) ([]share.Share, error)
	GetByID(ctx context.Context, id string) (share.Share, error)
	Update(ctx context.Context, id string, us share.UpdateShare) (share.Share, error)
	RecordPayment(ctx context.Context, id string, pr share.PaymentRequest) (share.Share, error)
	Delete(ctx context.Context, id string) error
	UpdatePending(ctx context.Context) (int, error)
}

var _ ShareService = (*share.Service)(nil)

type shareApi struct {
	svc      ShareService
	validate *validator.Validate
}

func registerShareAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc ShareService, validate *validator.Validate) {
	api := shareApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/shares", jwt, adminMiddleware())
	sg.GET("", api.query)
	sg.POST("/update-pending", api.updatePending)

	// detail endpoints
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
	sg.POST("/:id/payment", api.recordPayment)
}

// Handlers

func (api *shareApi) query(ctx echo.Context) error {
	filter := new(share.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []share.Share{})
	}
	if err := filter.Validate(api.validate); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, shareOrderFields...)

	shares, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying shares")
	}
	if shares == nil {
		shares = []share.Share{}
	}
	return ctx.JSON(http.StatusOK, shares)
}

func (api *shareApi) retrieve(ctx echo.Context) error {
	sh, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding share by ID")
	}
	return ctx.JSON(http.StatusOK, sh)
}

func (api *shareApi) update(ctx echo.Context) error {
	var data share.UpdateShare
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateShare")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sh, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating share")
	}
	return ctx.JSON(http.StatusOK, sh)
}

func (api *shareApi) recordPayment(ctx echo.Context) error {
	var data share.PaymentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sh, err := api.svc.RecordPayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusOK, sh)
}

func (api *shareApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting share")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *shareApi) updatePending(ctx echo.Context) error {
	n, err := api.svc.UpdatePending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "updating pending shares")
	}
	return ctx.JSON(http.StatusOK, UpdatePendingResponse{Updated: n})
}

type UpdatePendingResponse struct {
	Updated int `json:"updated"`
}
