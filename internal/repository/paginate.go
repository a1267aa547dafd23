package repository

import (
	"fmt"

	"gorm.io/gorm"
	"seungpyo.lee/SurveyBuilder/internal/domain"
)

const DefaultPerPage = 10

// paginate counts the rows matched by query and loads the requested page.
// query must already carry its Model and filters; order and scopes (such as
// preloads) are applied to the page fetch only.
func paginate[T any](query *gorm.DB, page, perPage int, order string, scopes ...func(*gorm.DB) *gorm.DB) (*domain.Page[T], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("error counting records: %w", err)
	}

	items := make([]T, 0, perPage)
	if total > int64((page-1)*perPage) {
		offset := (page - 1) * perPage
		if err := query.Scopes(scopes...).Order(order).Offset(offset).Limit(perPage).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("error fetching records: %w", err)
		}
	}

	return &domain.Page[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}
