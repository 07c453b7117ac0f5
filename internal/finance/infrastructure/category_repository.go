package infrastructure

import (
	"database/sql"
	"errors"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// EnsureDefaults seeds the category list at startup. Idempotent: names that
// already exist are left alone.
func (r *CategoryRepository) EnsureDefaults(names []string) error {
	for _, name := range names {
		if _, err := r.db.Exec(
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *CategoryRepository) FindAll() ([]domain.Category, error) {
	rows, err := r.db.Query(`SELECT id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) FindByID(id int) (*domain.Category, error) {
	var category domain.Category
	err := r.db.QueryRow(`SELECT id, name FROM categories WHERE id = $1`, id).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrInvalidCategory
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) NameLookup() (map[string]int, error) {
	categories, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]int, len(categories))
	for _, category := range categories {
		lookup[category.Name] = category.ID
	}
	return lookup, nil
}
