package application

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/finance/domain"
)

const linkedSelectorPrefix = "linked_"

// ParseAccountSelector parses the account query parameter: "all" selects the
// combined scope, a bare integer a legacy account, "linked_<id>" a linked
// account. Anything unparseable falls back to combined; a display filter is
// never a reason to fail a request.
func ParseAccountSelector(selector string) domain.AccountRef {
	if selector == "" || selector == "all" {
		return domain.NoAccount()
	}
	if rest, found := strings.CutPrefix(selector, linkedSelectorPrefix); found {
		id, err := strconv.Atoi(rest)
		if err != nil {
			return domain.NoAccount()
		}
		return domain.LinkedRef(id)
	}
	id, err := strconv.Atoi(selector)
	if err != nil {
		return domain.NoAccount()
	}
	return domain.LegacyRef(id)
}

// Selection is the normalized (scope, month, availableMonths) triple handed
// to the presentation layer.
type Selection struct {
	Scope           domain.Scope
	SelectedMonth   string
	AvailableMonths []string
	Year            int
	Month           time.Month
}

// Resolver turns a caller-supplied account selector and month into a scope
// and the list of months that scope can render.
type Resolver struct {
	accounts     domain.AccountRepository
	transactions domain.TransactionRepository
	now          func() time.Time
}

func NewResolver(accounts domain.AccountRepository, transactions domain.TransactionRepository) *Resolver {
	return &Resolver{
		accounts:     accounts,
		transactions: transactions,
		now:          time.Now,
	}
}

// Resolve never fails: an unknown selector, an account owned by another user
// and a malformed month all degrade to the combined scope and the current
// month. Explicit 403s for foreign accounts belong to the mutation handlers,
// not here.
func (r *Resolver) Resolve(userID, selector, monthParam string) Selection {
	ref := r.ownedRef(userID, ParseAccountSelector(selector))

	year, month := r.normalizeMonth(monthParam)
	selected := formatMonth(year, month)

	scope := domain.AccountScope(userID, ref)

	months, err := r.transactions.MonthsWithTransactions(scope)
	if err != nil {
		log.Printf("resolver: listing months for %q: %v", scope.Account.Selector(), err)
		months = nil
	}

	if len(months) == 0 {
		months = []string{selected}
	} else if !containsMonth(months, selected) {
		// The selected month is always present in the returned list, so the
		// month selector stays stable even with zero matching transactions.
		months = append(months, selected)
		sort.Sort(sort.Reverse(sort.StringSlice(months)))
	}

	return Selection{
		Scope:           scope,
		SelectedMonth:   selected,
		AvailableMonths: months,
		Year:            year,
		Month:           month,
	}
}

// ownedRef downgrades a reference to the combined scope unless it resolves to
// an account owned by the requesting user. Ownership mismatch and "not found"
// are deliberately indistinguishable here.
func (r *Resolver) ownedRef(userID string, ref domain.AccountRef) domain.AccountRef {
	switch ref.Kind {
	case domain.AccountLegacy:
		account, err := r.accounts.FindLegacyByID(ref.ID)
		if err != nil || account.UserID != userID {
			return domain.NoAccount()
		}
	case domain.AccountLinked:
		account, err := r.accounts.FindLinkedByID(ref.ID)
		if err != nil || account.UserID != userID {
			return domain.NoAccount()
		}
	}
	return ref
}

func (r *Resolver) normalizeMonth(monthParam string) (int, time.Month) {
	if monthParam != "" {
		if parsed, err := time.Parse("2006-01", monthParam); err == nil {
			return parsed.Year(), parsed.Month()
		}
	}
	now := r.now()
	return now.Year(), now.Month()
}

func formatMonth(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func containsMonth(months []string, month string) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}
