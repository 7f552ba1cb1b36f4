package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service reads and writes catalog records through an explicit store handle.
// Every call scopes the handle to the caller's context.
type Service struct {
	db *gorm.DB
}

// NewService wraps db
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Page is one page of an ordered listing
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Total    int64
}

// HasPrevious reports whether a page precedes this one
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one
func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

// Previous is the number of the preceding page
func (p Page[T]) Previous() int { return p.Number - 1 }

// Next is the number of the following page
func (p Page[T]) Next() int { return p.Number + 1 }

// paginate loads the requested page of q. A page that is not a number yields
// the first page and a page past the end yields the last one.
func paginate[T any](q *gorm.DB, pageParam string, size int) (Page[T], error) {
	var page Page[T]
	if size <= 0 {
		size = 20
	}
	q = q.Session(&gorm.Session{})
	if err := q.Model(new(T)).Count(&page.Total).Error; err != nil {
		return page, err
	}
	page.NumPages = int((page.Total + int64(size) - 1) / int64(size))
	if page.NumPages == 0 {
		page.NumPages = 1
	}

	number, err := strconv.Atoi(pageParam)
	switch {
	case err != nil || number < 1:
		number = 1
	case number > page.NumPages:
		number = page.NumPages
	}
	page.Number = number

	if err := q.Offset((number - 1) * size).Limit(size).Find(&page.Items).Error; err != nil {
		return page, err
	}
	return page, nil
}

func getByID[T any](db *gorm.DB, entity string, id uint, preloads ...string) (*T, error) {
	rec := new(T)
	q := db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(entity, id)
		}
		return nil, fmt.Errorf("load %s %d: %w", entity, id, err)
	}
	return rec, nil
}

// upsert inserts rec when id is zero. Otherwise it replaces every column of
// the stored row id with the values of rec, keeping its creation time.
func upsert[T any](tx *gorm.DB, entity string, id uint, rec *T) error {
	if id == 0 {
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return fmt.Errorf("create %s: %w", entity, err)
		}
		return nil
	}

	var count int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("find %s %d: %w", entity, id, err)
	}
	if count == 0 {
		return notFound(entity, id)
	}

	if err := tx.Model(rec).Select("*").Omit("id", "created_at", clause.Associations).Updates(rec).Error; err != nil {
		return fmt.Errorf("update %s %d: %w", entity, id, err)
	}
	return nil
}

func deleteByID[T any](tx *gorm.DB, entity string, id uint) error {
	res := tx.Delete(new(T), id)
	if res.Error != nil {
		return fmt.Errorf("delete %s %d: %w", entity, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(entity, id)
	}
	return nil
}
