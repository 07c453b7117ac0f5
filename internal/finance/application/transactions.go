package application

import (
	"time"

	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

// TransactionService serves the transactions page and manual categorization.
type TransactionService struct {
	transactions domain.TransactionRepository
	categories   domain.CategoryRepository
}

func NewTransactionService(transactions domain.TransactionRepository, categories domain.CategoryRepository) *TransactionService {
	return &TransactionService{transactions: transactions, categories: categories}
}

// ListForMonth returns the scope's transactions for one calendar month,
// newest first. An empty scope yields an empty slice, never nil.
func (s *TransactionService) ListForMonth(scope domain.Scope, year int, month time.Month) ([]domain.Transaction, error) {
	transactions, err := s.transactions.FindForMonth(scope, year, month)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		return []domain.Transaction{}, nil
	}
	return transactions, nil
}

// SetCategory manually assigns or clears (nil) a transaction's category.
// Unlike automatic categorization this overwrites an existing assignment;
// only an explicit caller may do that.
func (s *TransactionService) SetCategory(userID string, transactionID int, categoryID *int) (*domain.Transaction, error) {
	transaction, err := s.transactions.FindByID(transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.UserID != userID {
		return nil, financeErrors.ErrUnauthorized
	}

	if categoryID != nil {
		if _, err := s.categories.FindByID(*categoryID); err != nil {
			return nil, financeErrors.ErrInvalidCategory
		}
	}

	if err := s.transactions.SetCategory(transactionID, categoryID); err != nil {
		return nil, err
	}
	transaction.CategoryID = categoryID
	return transaction, nil
}

func (s *TransactionService) ListCategories() ([]domain.Category, error) {
	categories, err := s.categories.FindAll()
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}
