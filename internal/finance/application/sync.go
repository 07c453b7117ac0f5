package application

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"fintrack/internal/bank"
	"fintrack/internal/finance/domain"
	financeErrors "fintrack/internal/finance/errors"
)

const demoMonths = 3

// SyncService pulls statements from the bank feed into the store, applying
// duplicate suppression and auto-categorization. Each sync pass runs inside
// one store transaction so a fault never leaves it half-applied.
type SyncService struct {
	transactions domain.TransactionRepository
	accounts     domain.AccountRepository
	categories   domain.CategoryRepository
	feed         bank.Client
	categorizer  *Categorizer
	now          func() time.Time
}

func NewSyncService(
	transactions domain.TransactionRepository,
	accounts domain.AccountRepository,
	categories domain.CategoryRepository,
	feed bank.Client,
	categorizer *Categorizer,
) *SyncService {
	return &SyncService{
		transactions: transactions,
		accounts:     accounts,
		categories:   categories,
		feed:         feed,
		categorizer:  categorizer,
		now:          time.Now,
	}
}

// SyncAccount ingests the current month's statement into one account owned
// by the user. A candidate is a duplicate only when account, date,
// description and amount all match exactly; any difference creates a new
// transaction. Returns the number of transactions added.
func (s *SyncService) SyncAccount(userID string, ref domain.AccountRef) (added int, err error) {
	if err := s.checkOwnership(userID, ref); err != nil {
		return 0, err
	}

	lookup, err := s.categories.NameLookup()
	if err != nil {
		return 0, err
	}

	now := s.now()
	candidates := s.feed.MonthlyStatement(now.Year(), now.Month())

	tx, err := s.transactions.BeginTx()
	if err != nil {
		return 0, err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	added, err = s.ingest(tx, userID, ref, candidates, lookup)
	if err != nil {
		return 0, err
	}

	if err = s.accounts.TouchSyncedTx(tx, ref, now); err != nil {
		return 0, err
	}

	return added, nil
}

// GenerateDemoData wipes the user's transactions and regenerates the last
// three months of statements for every account the user owns. Returns the
// transaction and account counts.
func (s *SyncService) GenerateDemoData(userID string) (added int, accountCount int, err error) {
	legacy, err := s.accounts.FindLegacyByUser(userID)
	if err != nil {
		return 0, 0, err
	}
	linked, err := s.accounts.FindLinkedByUser(userID)
	if err != nil {
		return 0, 0, err
	}

	refs := make([]domain.AccountRef, 0, len(legacy)+len(linked))
	for _, account := range legacy {
		refs = append(refs, domain.LegacyRef(account.ID))
	}
	for _, account := range linked {
		refs = append(refs, domain.LinkedRef(account.ID))
	}
	if len(refs) == 0 {
		return 0, 0, financeErrors.ErrNoAccountsLinked
	}

	lookup, err := s.categories.NameLookup()
	if err != nil {
		return 0, 0, err
	}

	tx, err := s.transactions.BeginTx()
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else {
			err = tx.Commit()
		}
	}()

	if err = s.transactions.DeleteByUserTx(tx, userID); err != nil {
		return 0, 0, err
	}

	now := s.now()
	for _, ref := range refs {
		for offset := 0; offset < demoMonths; offset++ {
			year, month := monthsBack(now.Year(), now.Month(), offset)
			candidates := s.feed.MonthlyStatement(year, month)
			n, ingestErr := s.ingest(tx, userID, ref, candidates, lookup)
			if ingestErr != nil {
				err = ingestErr
				return 0, 0, err
			}
			added += n
		}
	}

	return added, len(refs), nil
}

// SyncStaleLinked re-syncs every active linked account whose last sync is
// older than maxAge. Cron entry point; failures are logged per account so
// one broken account does not stall the rest.
func (s *SyncService) SyncStaleLinked(maxAge time.Duration) {
	stale, err := s.accounts.FindStaleLinked(s.now().Add(-maxAge))
	if err != nil {
		log.Printf("sync: listing stale accounts: %v", err)
		return
	}
	for _, account := range stale {
		if _, err := s.SyncAccount(account.UserID, domain.LinkedRef(account.ID)); err != nil {
			log.Printf("sync: account %d (%s): %v", account.ID, account.AccountNickname, err)
		}
	}
}

func (s *SyncService) ingest(tx domain.Tx, userID string, ref domain.AccountRef, candidates []bank.Candidate, lookup map[string]int) (int, error) {
	added := 0
	for _, candidate := range candidates {
		amount := candidate.Amount.Abs()

		exists, err := s.transactions.ExistsDuplicateTx(tx, ref, candidate.Date, candidate.Description, amount)
		if err != nil {
			return 0, err
		}
		if exists {
			continue
		}

		transaction := &domain.Transaction{
			UserID:      userID,
			Account:     ref,
			Date:        candidate.Date,
			Description: candidate.Description,
			Amount:      amount,
			Type:        domain.TransactionDebit,
		}
		if err := transaction.Validate(); err != nil {
			log.Printf("sync: skipping candidate %q: %v", candidate.Description, err)
			continue
		}

		if err := s.transactions.SaveTx(tx, transaction); err != nil {
			return 0, err
		}

		if s.categorizer.Apply(transaction, lookup) == AssignmentApplied {
			// Conditional update keeps assignment sticky under races.
			if _, err := s.transactions.AssignCategoryIfUnsetTx(tx, transaction.ID, *transaction.CategoryID); err != nil {
				return 0, err
			}
		}
		added++
	}
	return added, nil
}

func (s *SyncService) checkOwnership(userID string, ref domain.AccountRef) error {
	switch ref.Kind {
	case domain.AccountLegacy:
		account, err := s.accounts.FindLegacyByID(ref.ID)
		if err != nil || account.UserID != userID {
			return financeErrors.ErrAccountNotFound
		}
	case domain.AccountLinked:
		account, err := s.accounts.FindLinkedByID(ref.ID)
		if err != nil || account.UserID != userID {
			return financeErrors.ErrAccountNotFound
		}
	default:
		return financeErrors.ErrAccountNotFound
	}
	return nil
}

func monthsBack(year int, month time.Month, offset int) (int, time.Month) {
	m := int(month) - offset
	for m <= 0 {
		m += 12
		year--
	}
	return year, time.Month(m)
}

func safeRollback(tx domain.Tx) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("Error during transaction rollback: %v", err)
	}
}
