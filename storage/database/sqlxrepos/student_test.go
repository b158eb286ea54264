package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachoo07/sistemaInterno-sub000/core/student"
)

var studentCols = []string{"id", "name", "last_name", "email", "state", "has_sibling_discount", "created_at", "updated_at"}

func TestStudentRepository_QueryActiveStudents(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM student WHERE state = $1")).
		WithArgs("Active").
		WillReturnRows(sqlmock.NewRows(studentCols).
			AddRow(uuid.New().String(), "Ana", "Diaz", "ana@test.ar", "Active", true, now, now).
			AddRow(uuid.New().String(), "Juan", "Perez", "", "Active", false, now, now))

	got, err := NewStudentRepository(db).QueryActiveStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].HasSiblingDiscount)
	assert.Equal(t, student.StateActive, got[1].State)
	_, hasEmail := got[1].MailAddress()
	assert.False(t, hasEmail)
}

func TestStudentRepository_QueryStudentsByID(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New().String()

	t.Run("single lookup", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM student WHERE id = ANY($1::uuid[])")).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(studentCols).
				AddRow(id, "Ana", "Diaz", "ana@test.ar", "Inactive", false, now, now))

		got, err := NewStudentRepository(db).QueryStudentsByID(context.Background(), id, uuid.New().String(), "lol")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, id, got[0].ID)
		assert.False(t, got[0].IsActive())
	})

	t.Run("no valid ids", func(t *testing.T) {
		db, _ := newMock(t)
		got, err := NewStudentRepository(db).QueryStudentsByID(context.Background(), "lol")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
