package boiledrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/nachoo07/sistemaInterno-sub000/core/setting"
)

type settingRow struct {
	Key   string `boil:"key"`
	Value string `boil:"value"`
}

type settingRepository struct {
	exec boil.ContextExecutor
}

var _ setting.Repository = (*settingRepository)(nil) // interface compliance check

func NewSettingRepository(exec boil.ContextExecutor) *settingRepository {
	return &settingRepository{exec: exec}
}

func (repo settingRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var row settingRow
	err := queries.Raw(`SELECT key, value FROM setting WHERE key = $1`, key).Bind(ctx, repo.exec, &row)
	if err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return "", setting.ErrNotFound
		}
		return "", errors.Wrap(err, "selecting setting")
	}
	return row.Value, nil
}

func (repo settingRepository) SetSetting(ctx context.Context, key, value string) error {
	q := `INSERT INTO setting (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := queries.Raw(q, key, value).ExecContext(ctx, repo.exec); err != nil {
		return errors.Wrap(err, "upserting setting")
	}
	return nil
}
