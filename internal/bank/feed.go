// Package bank simulates a bank / Account-Aggregator feed. There is no real
// integration behind it; statements are generated from a fixed merchant table
// with randomized amounts and dates.
package bank

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is one raw transaction as delivered by the feed, before
// duplicate suppression and categorization.
type Candidate struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

// Client is the feed the sync service pulls statements from.
type Client interface {
	MonthlyStatement(year int, month time.Month) []Candidate
}

type merchant struct {
	name string
	base int64
}

// Merchant names deliberately overlap the categorizer's keyword table so
// most generated transactions land in a category; a few stay uncategorized.
var merchants = []merchant{
	{"Zomato", 450},
	{"Swiggy", 380},
	{"McDonald's", 150},
	{"Dominos", 400},
	{"Starbucks", 250},
	{"Cafe Coffee Day", 180},
	{"Blinkit", 250},
	{"Zepto", 180},
	{"Big Basket", 1200},
	{"Dmart", 800},
	{"Flipkart", 1200},
	{"Amazon", 2500},
	{"Myntra", 800},
	{"Ajio", 600},
	{"Uber", 350},
	{"Ola", 280},
	{"MakeMyTrip", 5000},
	{"Electricity Bill", 1800},
	{"Water Bill", 400},
	{"Internet Bill", 799},
	{"Mobile Recharge", 499},
	{"Netflix", 199},
	{"Spotify", 79},
	{"Prime Video", 129},
	{"Gym Membership", 500},
	{"Rent Payment", 12000},
	{"Home Loan EMI", 25000},
	{"Petrol Pump", 1500},
	{"Shell Gas Station", 1200},
	{"BookMyShow", 400},
	{"PVR Cinema", 450},
	{"Airbnb", 2000},
	{"PharmEasy", 150},
	{"Apollo Pharmacy", 200},
	{"ATM Withdrawal", 5000},
	{"Transfer to Friend", 1000},
}

const (
	minPerMonth   = 15
	maxPerMonth   = 25
	minimumAmount = 50
)

// Simulator generates statements from the merchant table. Safe for use from
// the HTTP handlers and the cron sync job concurrently.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulator(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// MonthlyStatement returns 15-25 candidates dated within the given month.
// Days stay in 1-28 so the generator never has to care about month lengths.
// Amounts vary ±30% around the merchant base, with a floor of 50.
func (s *Simulator) MonthlyStatement(year int, month time.Month) []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := minPerMonth + s.rng.Intn(maxPerMonth-minPerMonth+1)
	candidates := make([]Candidate, 0, count)

	for i := 0; i < count; i++ {
		day := 1 + s.rng.Intn(28)
		m := merchants[s.rng.Intn(len(merchants))]

		variance := int64(s.rng.Intn(61) - 30)
		amount := m.base + m.base*variance/100
		if amount < minimumAmount {
			amount = minimumAmount
		}

		candidates = append(candidates, Candidate{
			Date:        time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
			Description: fmt.Sprintf("Payment to %s", m.name),
			Amount:      decimal.NewFromInt(amount),
		})
	}

	return candidates
}
