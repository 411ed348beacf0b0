// Package wallet holds the player's currency balance.
package wallet

import (
	"math"
	"sync"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
)

// Wallet is a thread-safe currency balance with lifetime totals.
// All amounts are rounded to production.Places decimals.
type Wallet struct {
	mu      sync.Mutex
	balance float64
	earned  float64
	spent   float64
}

// New creates a wallet with an opening balance. Negative balances start at 0.
func New(balance float64) *Wallet {
	w := &Wallet{}
	if balance > 0 {
		w.balance = production.Round(balance)
	}
	return w
}

// Balance returns the current balance.
func (w *Wallet) Balance() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// Credit adds amount to the balance. Non-positive amounts are ignored.
func (w *Wallet) Credit(amount float64) {
	if !(amount > 0) {
		return
	}
	amount = production.Round(amount)

	w.mu.Lock()
	w.balance = production.Round(w.balance + amount)
	w.earned = production.Round(w.earned + amount)
	w.mu.Unlock()
}

// Debit removes amount from the balance.
// Returns false and leaves the balance untouched if funds are insufficient.
func (w *Wallet) Debit(amount float64) bool {
	if !(amount >= 0) || math.IsInf(amount, 0) {
		return false
	}
	amount = production.Round(amount)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balance < amount {
		return false
	}
	w.balance = production.Round(w.balance - amount)
	w.spent = production.Round(w.spent + amount)
	return true
}

// Totals returns lifetime earned and spent amounts.
func (w *Wallet) Totals() (earned, spent float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.earned, w.spent
}

// Restore replaces the balance and totals with persisted values.
func (w *Wallet) Restore(balance, earned, spent float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = nonNegative(balance)
	w.earned = nonNegative(earned)
	w.spent = nonNegative(spent)
}

func nonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return production.Round(v)
}
