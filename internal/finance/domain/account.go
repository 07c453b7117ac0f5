package domain

import (
	"strconv"
	"time"
)

// AccountKind tags which historical account table a reference points at.
type AccountKind int

const (
	// AccountNone means the transaction is not tied to any account row,
	// or a scope covers every account the user owns.
	AccountNone AccountKind = iota
	AccountLegacy
	AccountLinked
)

// AccountRef identifies at most one account of either kind. The zero value
// is the "no account" reference, which doubles as the combined scope marker.
type AccountRef struct {
	Kind AccountKind
	ID   int
}

func LegacyRef(id int) AccountRef { return AccountRef{Kind: AccountLegacy, ID: id} }
func LinkedRef(id int) AccountRef { return AccountRef{Kind: AccountLinked, ID: id} }
func NoAccount() AccountRef       { return AccountRef{} }

func (r AccountRef) IsNone() bool { return r.Kind == AccountNone }

// Selector renders the reference back into the query-parameter grammar
// understood by ParseAccountSelector ("all", "7", "linked_7").
func (r AccountRef) Selector() string {
	switch r.Kind {
	case AccountLegacy:
		return strconv.Itoa(r.ID)
	case AccountLinked:
		return "linked_" + strconv.Itoa(r.ID)
	default:
		return "all"
	}
}

// Scope is the set of transactions under consideration: one user's combined
// holdings when Account is none, otherwise a single account of either kind.
type Scope struct {
	UserID  string
	Account AccountRef
}

func CombinedScope(userID string) Scope {
	return Scope{UserID: userID}
}

func AccountScope(userID string, ref AccountRef) Scope {
	return Scope{UserID: userID, Account: ref}
}

// BankAccount is the legacy account table kept for users who linked a bank
// before the linked_accounts schema landed.
type BankAccount struct {
	ID          int        `json:"id"`
	UserID      string     `json:"-"`
	AccountName string     `json:"account_name"`
	AccountType string     `json:"account_type,omitempty"`
	IsActive    bool       `json:"is_active"`
	LastSynced  *time.Time `json:"last_synced,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LinkedAccount is the current multi-account representation.
type LinkedAccount struct {
	ID              int        `json:"id"`
	UserID          string     `json:"-"`
	BankName        string     `json:"bank_name"`
	AccountNickname string     `json:"account_nickname"`
	ConsentStatus   string     `json:"consent_status"`
	IsActive        bool       `json:"is_active"`
	LastSynced      *time.Time `json:"last_synced,omitempty"`
	CreatedAt       time.Time  `json:"creation_date"`
}

type AccountRepository interface {
	CreateLegacy(account *BankAccount) error
	FindLegacyByID(id int) (*BankAccount, error)
	FindLegacyByUser(userID string) ([]BankAccount, error)
	RenameLegacy(id int, name string) error
	SetLegacyActive(id int, active bool) error

	CreateLinked(account *LinkedAccount) error
	FindLinkedByID(id int) (*LinkedAccount, error)
	FindLinkedByUser(userID string) ([]LinkedAccount, error)
	FindStaleLinked(olderThan time.Time) ([]LinkedAccount, error)
	DeleteLinkedTx(tx Tx, id int) error

	TouchSyncedTx(tx Tx, ref AccountRef, at time.Time) error
}
