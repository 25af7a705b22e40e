package cashflow

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jlmoreno/cartera/internal/database"
	"github.com/jlmoreno/cartera/internal/domain"
)

// Default category sets seeded for owners with no categories yet.
// "Investments" appears in both directions: an expense into it is a capital
// contribution, an income from it is a withdrawal.
var (
	defaultIncomeCategories  = []string{"Salary", domain.CategoryInvestments, "Other"}
	defaultExpenseCategories = []string{"Rent", "Credit Card", domain.CategoryInvestments, "Food", "Leisure", "Other"}
)

// CategoryRepository handles cash-flow category persistence in ledger.db.
type CategoryRepository struct {
	ledgerDB *sql.DB
	log      zerolog.Logger
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(ledgerDB *sql.DB, log zerolog.Logger) *CategoryRepository {
	return &CategoryRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "categories").Logger(),
	}
}

// EnsureDefaults seeds the default category set for an owner with none.
// Safe to call on every list; it is a no-op once any category exists.
func (r *CategoryRepository) EnsureDefaults(ownerID int64) error {
	var count int64
	err := r.ledgerDB.QueryRow(
		"SELECT COUNT(*) FROM categories WHERE owner_id = ?", ownerID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	// Seeding is all-or-nothing: a partial set would count as existing
	// categories and block the retry.
	err = database.WithTransaction(r.ledgerDB, func(tx *sql.Tx) error {
		seed := func(names []string, direction string) error {
			for _, name := range names {
				if _, err := tx.Exec(
					"INSERT INTO categories (name, direction, owner_id) VALUES (?, ?, ?)",
					name, direction, ownerID,
				); err != nil {
					return fmt.Errorf("failed to seed category %s/%s: %w", direction, name, err)
				}
			}
			return nil
		}

		if err := seed(defaultIncomeCategories, domain.DirectionIncome); err != nil {
			return err
		}
		return seed(defaultExpenseCategories, domain.DirectionExpense)
	})
	if err != nil {
		return err
	}

	r.log.Info().Int64("owner_id", ownerID).Msg("Seeded default categories")
	return nil
}

// Create adds a category. A duplicate (owner, name, direction) reports
// domain.ErrDuplicate.
func (r *CategoryRepository) Create(name, direction string, ownerID int64) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", domain.ErrInvalid)
	}
	if direction != domain.DirectionIncome && direction != domain.DirectionExpense {
		return nil, fmt.Errorf("%w: direction must be %q or %q",
			domain.ErrInvalid, domain.DirectionIncome, domain.DirectionExpense)
	}

	result, err := r.ledgerDB.Exec(
		"INSERT INTO categories (name, direction, owner_id) VALUES (?, ?, ?)",
		name, direction, ownerID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("category %s/%s: %w", direction, name, domain.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	return &domain.Category{ID: id, Name: name, Direction: direction, OwnerID: ownerID}, nil
}

// Delete removes a category by id, scoped to the owner. Entries already
// recorded under the category keep their label.
func (r *CategoryRepository) Delete(id, ownerID int64) error {
	result, err := r.ledgerDB.Exec(
		"DELETE FROM categories WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner returns an owner's categories grouped by direction order.
func (r *CategoryRepository) ListByOwner(ownerID int64) ([]domain.Category, error) {
	rows, err := r.ledgerDB.Query(
		"SELECT id, name, direction, owner_id FROM categories WHERE owner_id = ? ORDER BY direction, name",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Direction, &c.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
