package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nachoo07/sistemaInterno-sub000/core/student"
)

const studentColumns = "id, name, last_name, COALESCE(email, '') AS email, state, has_sibling_discount, created_at, updated_at"

type studentRepository struct {
	db sqlx.ExtContext
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) QueryActiveStudents(ctx context.Context) ([]student.Student, error) {
	students := make([]student.Student, 0)
	q := `SELECT ` + studentColumns + ` FROM student WHERE state = $1 ORDER BY last_name, name`
	if err := sqlx.SelectContext(ctx, repo.db, &students, q, student.StateActive); err != nil {
		return nil, wrapErr(err, "selecting active students")
	}
	return students, nil
}

func (repo studentRepository) QueryStudentsByID(ctx context.Context, ids ...string) ([]student.Student, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	students := make([]student.Student, 0, len(valid))
	if len(valid) == 0 {
		return students, nil
	}

	q := `SELECT ` + studentColumns + ` FROM student WHERE id = ANY($1::uuid[])`
	if err := sqlx.SelectContext(ctx, repo.db, &students, q, pq.Array(valid)); err != nil {
		return nil, wrapErr(err, "selecting students by id")
	}
	return students, nil
}
