package application

import (
	"strings"

	"fintrack/internal/finance/domain"
)

// CategoryRule pairs a category name with the lowercase keyword substrings
// that map a transaction description onto it. Rule order and keyword order
// are both load-bearing: the first hit wins.
type CategoryRule struct {
	Name     string
	Keywords []string
}

// DefaultCategoryRules is the built-in vendor keyword table. Declaration
// order decides ties between categories, so Food & Drink beats Rent/EMI for
// a description containing keywords from both.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Name: "Food & Drink", Keywords: []string{
			"zomato", "swiggy", "mcdonalds", "mcd", "starbucks", "cafe coffee day", "ccd",
			"dominos", "pizza hut", "eatsure", "burger king", "kfc", "subway", "dunkin",
		}},
		{Name: "Groceries", Keywords: []string{
			"bigbasket", "blinkit", "zepto", "grofers", "jiomart", "dmart", "reliance fresh",
			"more", "spencers", "nature basket", "star bazaar",
		}},
		{Name: "Fuel", Keywords: []string{
			"indian oil", "ioc", "hpcl", "hindustan petroleum", "bharat petroleum", "bpcl",
			"shell", "essar", "reliance petroleum", "petrol", "diesel", "fuel",
		}},
		{Name: "Subscriptions", Keywords: []string{
			"netflix", "spotify", "prime video", "amazon prime", "hotstar", "disney",
			"jiocinema", "sonyliv", "zee5", "apple music", "youtube premium", "voot",
		}},
		{Name: "Utilities", Keywords: []string{
			"bses", "tata power", "bescom", "adani electricity", "airtel", "jio", "vodafone",
			"vi", "bsnl", "mtnl", "electricity", "water bill", "gas bill", "piped gas",
			"indraprastha gas", "mahanagar gas",
		}},
		{Name: "Transport", Keywords: []string{
			"ola", "uber", "rapido", "redbus", "irctc", "metro", "delhi metro", "mumbai metro",
			"bangalore metro", "namma metro", "makemytrip", "goibibo", "yatra",
		}},
		{Name: "Shopping", Keywords: []string{
			"amazon", "flipkart", "myntra", "meesho", "ajio", "nykaa", "reliance digital",
			"croma", "vijay sales", "lifestyle", "westside", "max fashion", "pantaloons",
		}},
		{Name: "Payments", Keywords: []string{
			"paytm", "phonepe", "gpay", "google pay", "bhim", "upi", "mobikwik",
		}},
		{Name: "Rent/EMI", Keywords: []string{
			"rent", "emi", "housing loan", "home loan", "hdfc", "icici", "sbi", "axis",
		}},
	}
}

// DefaultCategoryNames lists every category seeded at startup: the keyword
// table's names plus the manual-only buckets.
func DefaultCategoryNames() []string {
	rules := DefaultCategoryRules()
	names := make([]string, 0, len(rules)+2)
	for _, rule := range rules {
		names = append(names, rule.Name)
	}
	return append(names, "Other", "Income")
}

// Assignment is the outcome of one categorization attempt.
type Assignment int

const (
	// AssignmentNone means no keyword matched; the transaction stays
	// uncategorized, which is a valid terminal state.
	AssignmentNone Assignment = iota
	AssignmentApplied
	AssignmentAlreadySet
)

// Categorizer maps transaction descriptions onto categories by ordered
// keyword matching. The rule table is injected so tests can supply their own.
type Categorizer struct {
	rules []CategoryRule
}

func NewCategorizer(rules []CategoryRule) *Categorizer {
	return &Categorizer{rules: rules}
}

// Match returns the first category whose keyword appears in the lowercased
// description. A rule whose name is missing from the lookup counts as "no
// match for this category" and scanning continues; stored categories and the
// static table are allowed to drift.
func (c *Categorizer) Match(description string, lookup map[string]int) (int, string, bool) {
	lowered := strings.ToLower(description)
	for _, rule := range c.rules {
		categoryID, known := lookup[rule.Name]
		if !known {
			continue
		}
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return categoryID, rule.Name, true
			}
		}
	}
	return 0, "", false
}

// Apply runs Match against the transaction and records the result on it.
// Assignment is sticky: a transaction that already carries a category is
// left untouched and reported as AssignmentAlreadySet.
func (c *Categorizer) Apply(transaction *domain.Transaction, lookup map[string]int) Assignment {
	if transaction.Categorized() {
		return AssignmentAlreadySet
	}
	categoryID, _, ok := c.Match(transaction.Description, lookup)
	if !ok {
		return AssignmentNone
	}
	transaction.CategoryID = &categoryID
	return AssignmentApplied
}
