package inmemdb

import (
	"context"

	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
)

type settingRepository struct {
	db *settingTable
}

var _ setting.Repository = (*settingRepository)(nil) // interface compliance check

func NewSettingRepository(db *DB) *settingRepository {
	return &settingRepository{db: db.setting}
}

func (repo *settingRepository) GetSetting(_ context.Context, key string) (string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if val, ok := repo.db.table[key]; ok {
		return val, nil
	}
	return "", setting.ErrNotFound
}

func (repo *settingRepository) SetSetting(_ context.Context, key, value string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[key] = value
	return nil
}
