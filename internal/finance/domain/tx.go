package domain

// Tx is one unit of work spanning the finance repositories. *sql.Tx
// satisfies it directly; test doubles substitute a no-op.
type Tx interface {
	Commit() error
	Rollback() error
}
