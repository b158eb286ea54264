package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
)

const (
	shareColumns = "id, student_id, period_date, amount, state, payment_method, payment_date, created_at, updated_at"
	periodLayout = "2006-01-02"
)

var (
	shareOrderFields  = []string{"period_date", "created_at", "updated_at", "amount", "state", "student_id"}
	shareDefaultOrder = "period_date DESC, created_at ASC"
	paidState         = "'" + string(share.StatePaid) + "'"
)

type shareRepository struct {
	db sqlx.ExtContext
}

var _ share.Repository = (*shareRepository)(nil) // interface compliance check

func NewShareRepository(db *sqlx.DB) *shareRepository {
	return &shareRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to share.ErrNotFound
func (repo shareRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return share.ErrNotFound
	}
	return wrapErr(err, msg)
}

func (repo shareRepository) CreateShareIfAbsent(ctx context.Context, sh share.Share) (share.Share, bool, error) {
	sh.ID = uuid.New().String()
	period := sh.PeriodDate.Format(periodLayout)

	q := `INSERT INTO share (` + shareColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (student_id, period_date) DO NOTHING
		RETURNING id`
	var id string
	err := sqlx.GetContext(ctx, repo.db, &id, q,
		sh.ID, sh.StudentID, period, sh.Amount, sh.State, sh.PaymentMethod, sh.PaymentDate, sh.CreatedAt, sh.UpdatedAt,
	)
	switch err {
	case nil:
		return sh, true, nil
	case sql.ErrNoRows: // conflict: the share already exists
		var existing share.Share
		q = `SELECT ` + shareColumns + ` FROM share WHERE student_id = $1 AND period_date = $2`
		if err = sqlx.GetContext(ctx, repo.db, &existing, q, sh.StudentID, period); err != nil {
			return share.Share{}, false, wrapErr(err, "selecting existing share")
		}
		return existing, false, nil
	default:
		return share.Share{}, false, wrapErr(err, "inserting share")
	}
}

func (repo shareRepository) GetShare(ctx context.Context, id string) (share.Share, error) {
	if _, err := uuid.Parse(id); err != nil {
		return share.Share{}, share.ErrNotFound
	}
	var sh share.Share
	err := sqlx.GetContext(ctx, repo.db, &sh, `SELECT `+shareColumns+` FROM share WHERE id = $1`, id)
	if err != nil {
		return share.Share{}, repo.trapNoRowsErr(err, "selecting share")
	}
	return sh, nil
}

func (repo shareRepository) QueryShares(ctx context.Context, filter *share.QueryFilter, ordering []core.DBOrdering) ([]share.Share, error) {
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if filter != nil {
		if filter.StudentID != "" {
			if _, err := uuid.Parse(filter.StudentID); err != nil {
				return []share.Share{}, nil
			}
			args = append(args, filter.StudentID)
			conds = append(conds, fmt.Sprintf("student_id = $%d", len(args)))
		}
		if len(filter.States) > 0 {
			args = append(args, pq.Array(filter.States))
			conds = append(conds, fmt.Sprintf("state = ANY($%d)", len(args)))
		}
		if filter.Period != "" {
			args = append(args, filter.Period)
			conds = append(conds, fmt.Sprintf("to_char(period_date, 'YYYY-MM') = $%d", len(args)))
		}
	}

	q := `SELECT ` + shareColumns + ` FROM share`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY ` + orderBy(ordering, shareOrderFields, shareDefaultOrder)

	shares := make([]share.Share, 0)
	if err := sqlx.SelectContext(ctx, repo.db, &shares, q, args...); err != nil {
		return nil, wrapErr(err, "selecting shares")
	}
	return shares, nil
}

func (repo shareRepository) QuerySharesByState(ctx context.Context, states ...share.State) ([]share.Share, error) {
	sts := make([]string, 0, len(states))
	for _, st := range states {
		sts = append(sts, string(st))
	}
	shares := make([]share.Share, 0)
	q := `SELECT ` + shareColumns + ` FROM share WHERE state = ANY($1) ORDER BY period_date, created_at`
	if err := sqlx.SelectContext(ctx, repo.db, &shares, q, pq.Array(sts)); err != nil {
		return nil, wrapErr(err, "selecting shares by state")
	}
	return shares, nil
}

func (repo shareRepository) UpdateShare(ctx context.Context, sh share.Share) (share.Share, error) {
	q := `UPDATE share SET
			amount = :amount,
			state = :state,
			payment_method = :payment_method,
			payment_date = :payment_date,
			updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, sh)
	if err != nil {
		return share.Share{}, wrapErr(err, "updating share")
	}
	if n, err := res.RowsAffected(); err != nil {
		return share.Share{}, wrapErr(err, "updating share")
	} else if n == 0 {
		return share.Share{}, share.ErrNotFound
	}
	return sh, nil
}

// RepriceShares updates every share in a single statement, skipping paid ones.
func (repo shareRepository) RepriceShares(ctx context.Context, updates []share.Repricing, updatedAt time.Time) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(updates))
	amounts := make([]int64, 0, len(updates))
	states := make([]string, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.ID)
		amounts = append(amounts, u.Amount)
		states = append(states, string(u.State))
	}

	q := `UPDATE share AS s
		SET amount = u.amount, state = u.state, updated_at = $4
		FROM (
			SELECT unnest($1::uuid[]) AS id, unnest($2::bigint[]) AS amount, unnest($3::text[]) AS state
		) AS u
		WHERE s.id = u.id AND s.state <> ` + paidState
	res, err := repo.db.ExecContext(ctx, q, pq.Array(ids), pq.Array(amounts), pq.Array(states), updatedAt)
	if err != nil {
		return 0, wrapErr(err, "bulk updating shares")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr(err, "bulk updating shares")
	}
	return int(n), nil
}

func (repo shareRepository) DeleteShare(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return share.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM share WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err, "deleting share")
	}
	if n, err := res.RowsAffected(); err != nil {
		return wrapErr(err, "deleting share")
	} else if n == 0 {
		return share.ErrNotFound
	}
	return nil
}

// orderBy renders an ORDER BY clause restricted to allowed fields.
func orderBy(ordering []core.DBOrdering, allowed []string, fallback string) string {
	safe := core.SafeOrderings(ordering, allowed...)
	if len(safe) == 0 {
		return fallback
	}
	parts := make([]string, 0, len(safe))
	for _, ord := range safe {
		parts = append(parts, ord.String())
	}
	return strings.Join(parts, ", ")
}
