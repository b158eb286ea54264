package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nachoo07/sistemaInterno-sub000/core"
	"github.com/nachoo07/sistemaInterno-sub000/core/share"
)

const periodKeyLayout = "2006-01-02"

type shareRepository struct {
	db *shareTable
}

var _ share.Repository = (*shareRepository)(nil) // interface compliance check

func NewShareRepository(db *DB) *shareRepository {
	return &shareRepository{db: db.share}
}

func (repo *shareRepository) query() []share.Share {
	shares := make([]share.Share, 0, len(repo.db.table))
	for _, sh := range repo.db.table {
		shares = append(shares, *sh)
	}
	return shares
}

func (repo *shareRepository) CreateShareIfAbsent(_ context.Context, sh share.Share) (share.Share, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	period := sh.PeriodDate.Format(periodKeyLayout)
	for _, existing := range repo.db.table {
		if existing.StudentID == sh.StudentID && existing.PeriodDate.Format(periodKeyLayout) == period {
			return *existing, false, nil
		}
	}
	sh.ID = uuid.New().String()
	repo.db.table[sh.ID] = &sh
	return sh, true, nil
}

func (repo *shareRepository) GetShare(_ context.Context, id string) (share.Share, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sh, ok := repo.db.table[id]; ok {
		return *sh, nil
	}
	return share.Share{}, share.ErrNotFound
}

func (repo *shareRepository) QueryShares(_ context.Context, filter *share.QueryFilter, ordering []core.DBOrdering) ([]share.Share, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	shares := make([]share.Share, 0)
	for _, sh := range repo.query() {
		if filter == nil || filter.Matches(sh) {
			shares = append(shares, sh)
		}
	}
	sortShares(shares, ordering)
	return shares, nil
}

func (repo *shareRepository) QuerySharesByState(ctx context.Context, states ...share.State) ([]share.Share, error) {
	filter := &share.QueryFilter{States: make([]string, 0, len(states))}
	for _, st := range states {
		filter.States = append(filter.States, string(st))
	}
	return repo.QueryShares(ctx, filter, nil)
}

func (repo *shareRepository) UpdateShare(_ context.Context, sh share.Share) (share.Share, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sh.ID]; !ok {
		return share.Share{}, share.ErrNotFound
	}
	repo.db.table[sh.ID] = &sh
	return sh, nil
}

func (repo *shareRepository) RepriceShares(_ context.Context, updates []share.Repricing, updatedAt time.Time) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, u := range updates {
		sh, ok := repo.db.table[u.ID]
		if !ok || sh.IsPaid() {
			continue
		}
		updated := *sh
		updated.Amount = u.Amount
		updated.State = u.State
		updated.UpdatedAt = updatedAt
		repo.db.table[u.ID] = &updated
		n++
	}
	return n, nil
}

func (repo *shareRepository) DeleteShare(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return share.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

// sortShares orders by period (newest first) unless told otherwise.
func sortShares(shares []share.Share, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "period_date"}, {Field: "created_at", Ascending: true}}
	}
	sort.SliceStable(shares, func(i, j int) bool {
		for _, ord := range ordering {
			cmp := compareShares(shares[i], shares[j], ord.Field)
			if cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return shares[i].ID < shares[j].ID
	})
}

func compareShares(a, b share.Share, field string) int {
	switch field {
	case "period_date":
		return compareTimes(a.PeriodDate, b.PeriodDate)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	case "amount":
		switch {
		case a.Amount < b.Amount:
			return -1
		case a.Amount > b.Amount:
			return 1
		}
		return 0
	case "state":
		return strings.Compare(string(a.State), string(b.State))
	case "student_id":
		return strings.Compare(a.StudentID, b.StudentID)
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
