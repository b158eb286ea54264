package student

import (
	"context"
	"net/mail"
	"strings"
	"time"
)

type State string

const (
	StateActive   State = "Active"
	StateInactive State = "Inactive"
)

// Student is the billing view of an academy student. Students are managed elsewhere.
type Student struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	LastName           string    `json:"last_name" db:"last_name"`
	Email              string    `json:"email" db:"email"`
	State              State     `json:"state" db:"state"`
	HasSiblingDiscount bool      `json:"has_sibling_discount" db:"has_sibling_discount"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (s Student) IsActive() bool { return s.State == StateActive }

func (s Student) FullName() string {
	return strings.TrimSpace(s.Name + " " + s.LastName)
}

// MailAddress returns the student's address, if any.
func (s Student) MailAddress() (mail.Address, bool) {
	email := strings.TrimSpace(s.Email)
	if email == "" {
		return mail.Address{}, false
	}
	return mail.Address{Name: s.FullName(), Address: email}, true
}

// Repository is the read access the billing engine needs over students.
type Repository interface {
	QueryActiveStudents(ctx context.Context) ([]Student, error)
	// QueryStudentsByID returns the students found among ids; unknown ids are ignored.
	QueryStudentsByID(ctx context.Context, ids ...string) ([]Student, error)
}

// IndexByID maps students by ID.
func IndexByID(students []Student) map[string]Student {
	idx := make(map[string]Student, len(students))
	for _, s := range students {
		idx[s.ID] = s
	}
	return idx
}
