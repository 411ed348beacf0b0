// Package session owns the production core of one food truck game.
//
// A Session wires the accumulator, the upgrade ledger, the currency wallet,
// the notification sink and the snapshot store together. Every mutation of
// production state goes through the session mutex, so the tick loop,
// auto-collect loop and player actions are serialized.
package session

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/config"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/event"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/snapshot"
)

const defaultSaveTimeout = 5 * time.Second

// Currency is the external balance the session credits and debits.
type Currency interface {
	Credit(amount float64)
	Debit(amount float64) bool
	Balance() float64
}

// accountBook is implemented by currencies that persist lifetime totals (wallet.Wallet).
type accountBook interface {
	Totals() (earned, spent float64)
	Restore(balance, earned, spent float64)
}

// Session is the single owner of one game's production state.
// Thread-safe: all mutable state protected by mu.
type Session struct {
	mu sync.Mutex

	id             string
	economy        config.Economy
	acc            *production.Accumulator
	ledger         *production.Ledger
	conversionRate float64

	wallet   Currency
	notifier event.Notifier
	store    snapshot.Store
	clock    production.Clock

	saveTimeout time.Duration
	saveReq     chan snapshot.Snapshot
}

// Option configures a Session.
type Option func(*Session)

// WithStore sets the snapshot store used by Save, Load and RunSaveLoop.
func WithStore(store snapshot.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithClock sets the clock used for SavedAt, offline progress and the tick loop.
func WithClock(clock production.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithSaveTimeout bounds every store call.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// WithID sets the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New builds a fresh session from balance configuration.
// Invalid economy numbers fail with production.ErrConfiguration.
func New(eco config.Economy, wallet Currency, notifier event.Notifier, opts ...Option) (*Session, error) {
	if wallet == nil {
		return nil, fmt.Errorf("%w: session needs a currency", production.ErrConfiguration)
	}
	if math.IsNaN(eco.ConversionRate) || math.IsInf(eco.ConversionRate, 0) || eco.ConversionRate < 0 {
		return nil, fmt.Errorf("%w: conversion rate %v must be a non-negative number", production.ErrConfiguration, eco.ConversionRate)
	}
	if eco.MaxOfflineProgress < 0 {
		return nil, fmt.Errorf("%w: max offline progress %v is negative", production.ErrConfiguration, eco.MaxOfflineProgress)
	}

	acc, err := production.NewAccumulator(eco.BaseCapacity, eco.BaseRate, eco.Efficiency)
	if err != nil {
		return nil, fmt.Errorf("accumulator: %w", err)
	}
	ledger, err := production.NewLedger(eco.TrackConfigs())
	if err != nil {
		return nil, fmt.Errorf("upgrade ledger: %w", err)
	}
	if step := capacityStep(eco.CapacityUpgrade.Increment); step < 1 {
		return nil, fmt.Errorf("%w: capacity increment %v adds %d slots per purchase",
			production.ErrConfiguration, eco.CapacityUpgrade.Increment, step)
	}

	if notifier == nil {
		notifier = event.Discard{}
	}

	s := &Session{
		economy:        eco,
		acc:            acc,
		ledger:         ledger,
		conversionRate: eco.ConversionRate,
		wallet:         wallet,
		notifier:       notifier,
		clock:          production.RealClock{},
		saveTimeout:    defaultSaveTimeout,
		saveReq:        make(chan snapshot.Snapshot, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.id == "" {
		s.id = uuid.NewString()
	} else if _, err := uuid.Parse(s.id); err != nil {
		return nil, fmt.Errorf("%w: session id %q: %v", production.ErrConfiguration, s.id, err)
	}

	return s, nil
}

// ID returns the session id used as the persistence key.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the current accumulator state.
func (s *Session) State() production.AccumulatorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.State()
}

// Track returns the current state of an upgrade track.
func (s *Session) Track(kind production.TrackKind) (production.UpgradeTrack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Track(kind)
}

// Balance returns the wallet balance.
func (s *Session) Balance() float64 {
	return s.wallet.Balance()
}

// Efficiency returns the production multiplier.
func (s *Session) Efficiency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.Efficiency()
}

// SetEfficiency changes the production multiplier (staff, boosts).
func (s *Session) SetEfficiency(efficiency float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.SetEfficiency(efficiency)
}

// Tick advances production by elapsed wall time.
// Emits production_updated when the state changed.
func (s *Session) Tick(elapsed time.Duration) production.AccumulatorState {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.acc.State()
	after := s.acc.Advance(elapsed.Seconds())
	if after != before {
		s.notifier.Notify(event.NewProductionUpdated(after.Quantity, after.Capacity))
	}
	return after
}

// Collect drains the accumulator into the wallet and returns the credited amount.
func (s *Session) Collect() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	credited := s.acc.Drain(s.conversionRate)
	s.wallet.Credit(credited)

	state := s.acc.State()
	s.notifier.Notify(event.NewCollected(credited))
	s.notifier.Notify(event.NewProductionUpdated(state.Quantity, state.Capacity))
	return credited
}

// Purchase buys the next level of an upgrade track.
// Fails with production.ErrInsufficientFunds (nothing changes) when the wallet cannot pay.
func (s *Session) Purchase(kind production.TrackKind) (production.PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.ledger.Quote(kind, s.wallet.Balance())
	if err != nil {
		return production.PurchaseResult{}, err
	}
	if !s.wallet.Debit(res.Cost) {
		return production.PurchaseResult{}, fmt.Errorf("%w: %s upgrade costs %.2f", production.ErrInsufficientFunds, kind, res.Cost)
	}
	s.ledger.Commit(kind, res.Track)
	res.NewBalance = s.wallet.Balance()

	switch kind {
	case production.TrackRate:
		s.acc.AddRate(res.AppliedIncrement)
		s.notifier.Notify(event.NewRateUpgraded(s.acc.State().Rate))
	case production.TrackCapacity:
		s.acc.AddCapacity(capacityStep(res.AppliedIncrement))
		state := s.acc.State()
		s.notifier.Notify(event.NewCapacityUpgraded(state.Capacity))
		s.notifier.Notify(event.NewProductionUpdated(state.Quantity, state.Capacity))
	}

	slog.Debug("upgrade purchased",
		"session", s.id,
		"track", kind,
		"level", res.Track.Level,
		"cost", res.Cost,
		"next_cost", res.Track.NextCost)

	return res, nil
}

// capacityStep is the whole number of slots one capacity purchase adds.
func capacityStep(increment float64) int {
	return int(math.Round(production.Round(increment)))
}
