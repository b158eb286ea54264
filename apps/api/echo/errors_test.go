package echoapi_test

import (
	"context"
	"database/sql"
	"net/http"
	"syscall"
	"testing"

	. "github.com/nachoo07/sistemaInterno-sub000/apps/api/echo"
	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
)

// brokenShareService fails every lookup with err.
type brokenShareService struct {
	ShareService
	err error
}

func (svc brokenShareService) GetByID(context.Context, string) (share.Share, error) {
	return share.Share{}, svc.err
}

func Test_errorHandler_shutdown(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCode     int
		wantShutdown bool
	}{
		{name: "lost database", err: core.NewShutdownError(sql.ErrConnDone, "selecting share"), wantCode: http.StatusInternalServerError, wantShutdown: true},
		{name: "server error", err: sql.ErrTxDone, wantCode: http.StatusInternalServerError},
		{name: "domain error", err: share.ErrNotFound, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setup(t)
			srv := NewServer(ServerDeps{
				Conf:       app.conf,
				Logger:     app.logger,
				ShareSvc:   brokenShareService{err: tt.err},
				Validate:   app.validate,
				Translator: app.translator,
			})

			req, rec := newAuthRequest(http.MethodGet, "/v1/shares/whatever", getToken(t, app.conf, true))
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode}, rec)

			select {
			case sig := <-srv.ShutdownSignal():
				if !tt.wantShutdown {
					t.Errorf("failed! unexpected shutdown signal %v", sig)
				} else if sig != syscall.SIGTERM {
					t.Errorf("failed! signal = %v; want %v", sig, syscall.SIGTERM)
				}
			default:
				if tt.wantShutdown {
					t.Error("failed! shutdown was not signaled")
				}
			}
		})
	}
}
