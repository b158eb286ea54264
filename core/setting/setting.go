package setting

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrNotFound     = errors.New("setting not found")
	ErrInvalidValue = errors.New("setting value is not a positive integer")
)

type Repository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// GetInt reads the setting at key as a positive integer.
// It returns ErrNotFound when the key is absent and ErrInvalidValue when it cannot be parsed.
func GetInt(ctx context.Context, repo Repository, key string) (int64, error) {
	raw, err := repo.GetSetting(ctx, key)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || val <= 0 {
		return 0, ErrInvalidValue
	}
	return val, nil
}

func SetInt(ctx context.Context, repo Repository, key string, val int64) error {
	if val <= 0 {
		return ErrInvalidValue
	}
	return repo.SetSetting(ctx, key, strconv.FormatInt(val, 10))
}
