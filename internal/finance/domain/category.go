package domain

// Category is a fixed, named spending bucket seeded once at startup.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CategoryRepository interface {
	EnsureDefaults(names []string) error
	FindAll() ([]Category, error)
	FindByID(id int) (*Category, error)
	// NameLookup returns the name → id mapping the categorizer matches against.
	NameLookup() (map[string]int, error)
}
