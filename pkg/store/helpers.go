package store

import (
	"context"

	"gorm.io/gorm"
)

// Generic GORM helpers. These reduce repetitive CRUD boilerplate across the
// store implementation files. They are unexported and operate on the raw
// *gorm.DB so they stay usable inside transactions.

// getByField retrieves a single record of type T by matching field=value,
// converting gorm.ErrRecordNotFound to the provided notFoundErr.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listByField retrieves all records of type T matching field=value, ordered
// by the given clause. Returns an empty slice on success with no records.
func listByField[T any](db *gorm.DB, ctx context.Context, field string, value any, order string) ([]*T, error) {
	var results []*T
	q := db.WithContext(ctx).Where(field+" = ?", value)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// create persists the entity, converting unique-constraint violations to dupErr.
func create[T any](db *gorm.DB, ctx context.Context, entity *T, dupErr error) error {
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return dupErr
		}
		return err
	}
	return nil
}
