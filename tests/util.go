package testutil

import (
	"context"
	"io"
	"log"
	"strconv"
	"testing"
	"time"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
	"github.com/nachoo07/sistemaInterno-sub000/core/student"
	logsvc "github.com/nachoo07/sistemaInterno-sub000/services/logger"
)

type studentCreator interface {
	CreateStudent(ctx context.Context, st student.Student) (student.Student, error)
}

// NewLogger returns a silent logger with Rollbar reporting disabled.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.NewTestConfig())
	logger.Enable(false)
	return logger
}

func CreateStudent(
	t *testing.T,
	repo studentCreator,
	name, lastName, email string,
	hasSiblingDiscount, isActive bool,
) student.Student {
	state := student.StateActive
	if !isActive {
		state = student.StateInactive
	}
	st, err := repo.CreateStudent(context.Background(), student.Student{
		Name:               name,
		LastName:           lastName,
		Email:              email,
		State:              state,
		HasSiblingDiscount: hasSiblingDiscount,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

func CreateShare(
	t *testing.T,
	repo share.Repository,
	studentID string,
	period time.Time,
	amount int64,
	state share.State,
) share.Share {
	now := time.Now().UTC()
	sh, created, err := repo.CreateShareIfAbsent(context.Background(), share.Share{
		StudentID:  studentID,
		PeriodDate: time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, period.Location()),
		Amount:     amount,
		State:      state,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil || !created {
		t.Fatalf("CreateShare() failed: created %v, err %v", created, err)
	}
	return sh
}

func SetTariff(t *testing.T, repo setting.Repository, key string, tariff int64) {
	if err := repo.SetSetting(context.Background(), key, strconv.FormatInt(tariff, 10)); err != nil {
		t.Fatalf("SetTariff() failed: %v", err)
	}
}

// FreezeTime makes share.NowFunc return at until the test ends.
func FreezeTime(t *testing.T, at time.Time) {
	orig := share.NowFunc
	share.NowFunc = func() time.Time { return at }
	t.Cleanup(func() { share.NowFunc = orig })
}
