package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
	"github.com/nachoo07/sistemaInterno-sub000/core/student"
)

func TestStudentRepository(t *testing.T) {
	repo := NewStudentRepository(Open())
	ctx := context.Background()

	ana, err := repo.CreateStudent(ctx, student.Student{Name: "Ana", LastName: "Diaz", State: student.StateActive})
	require.NoError(t, err)
	assert.NotEmpty(t, ana.ID)
	assert.False(t, ana.CreatedAt.IsZero())
	juan, err := repo.CreateStudent(ctx, student.Student{ID: "juan", Name: "Juan", LastName: "Perez", State: student.StateInactive})
	require.NoError(t, err)
	assert.Equal(t, "juan", juan.ID)

	active, err := repo.QueryActiveStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []student.Student{ana}, active)

	tests := []struct {
		name string
		ids  []string
		want int
	}{
		{name: "none", want: 0},
		{name: "inactive included", ids: []string{ana.ID, juan.ID}, want: 2},
		{name: "unknown skipped", ids: []string{"lol", juan.ID}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryStudentsByID(ctx, tt.ids...)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSettingRepository(t *testing.T) {
	repo := NewSettingRepository(Open())
	ctx := context.Background()

	_, err := repo.GetSetting(ctx, "base_tariff")
	assert.Equal(t, setting.ErrNotFound, err)

	require.NoError(t, repo.SetSetting(ctx, "base_tariff", "30000"))
	require.NoError(t, repo.SetSetting(ctx, "base_tariff", "32000"))
	got, err := repo.GetSetting(ctx, "base_tariff")
	require.NoError(t, err)
	assert.Equal(t, "32000", got)
}
