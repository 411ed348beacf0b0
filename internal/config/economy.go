package config

import (
	"fmt"
	"time"

	"github.com/aaronleebrooks/AlienHotDogFoodTruck-sub001/internal/production"
)

// Economy presets.
const (
	PresetDefault = "default"
	PresetCasual  = "casual"
	PresetHard    = "hard"
)

// Economy holds gameplay balance numbers. None of them are load-bearing:
// every value can be overridden from YAML.
type Economy struct {
	Preset string `yaml:"preset"`

	BaseRate        float64 `yaml:"base_rate"`     // hot dogs per second
	BaseCapacity    int     `yaml:"base_capacity"` // hot dogs held before production stops
	Efficiency      float64 `yaml:"efficiency"`
	ConversionRate  float64 `yaml:"conversion_rate"` // currency per hot dog
	StartingBalance float64 `yaml:"starting_balance"`

	// MaxOfflineProgress caps the production credited for time spent offline.
	MaxOfflineProgress time.Duration `yaml:"max_offline_progress"`

	RateUpgrade     UpgradeTrack `yaml:"rate_upgrade"`
	CapacityUpgrade UpgradeTrack `yaml:"capacity_upgrade"`
}

// UpgradeTrack holds the cost curve of one upgrade.
type UpgradeTrack struct {
	BaseCost  float64 `yaml:"base_cost"`
	Scaling   float64 `yaml:"scaling"`
	Increment float64 `yaml:"increment"`
}

// TrackConfigs converts both upgrade tracks to production ledger configs.
func (e Economy) TrackConfigs() map[production.TrackKind]production.TrackConfig {
	return map[production.TrackKind]production.TrackConfig{
		production.TrackRate:     e.RateUpgrade.trackConfig(),
		production.TrackCapacity: e.CapacityUpgrade.trackConfig(),
	}
}

func (u UpgradeTrack) trackConfig() production.TrackConfig {
	return production.TrackConfig{
		BaseCost:  u.BaseCost,
		Scaling:   u.Scaling,
		Increment: u.Increment,
	}
}

// DefaultEconomy returns the default balance configuration.
func DefaultEconomy() Economy {
	return Economy{
		Preset:             PresetDefault,
		BaseRate:           1.0,
		BaseCapacity:       100,
		Efficiency:         1.0,
		ConversionRate:     2.0,
		StartingBalance:    0,
		MaxOfflineProgress: 8 * time.Hour,
		RateUpgrade: UpgradeTrack{
			BaseCost:  10,
			Scaling:   1.5,
			Increment: 0.5,
		},
		CapacityUpgrade: UpgradeTrack{
			BaseCost:  25,
			Scaling:   1.5,
			Increment: 50,
		},
	}
}

// CasualEconomy returns easier balance for casual play.
func CasualEconomy() Economy {
	eco := DefaultEconomy()
	eco.Preset = PresetCasual
	eco.ConversionRate = 2.5
	eco.StartingBalance = 20
	eco.MaxOfflineProgress = 24 * time.Hour
	eco.RateUpgrade.Scaling = 1.35
	eco.CapacityUpgrade.Scaling = 1.35
	return eco
}

// HardEconomy returns harder balance for experienced players.
func HardEconomy() Economy {
	eco := DefaultEconomy()
	eco.Preset = PresetHard
	eco.BaseCapacity = 50
	eco.ConversionRate = 1.5
	eco.MaxOfflineProgress = 2 * time.Hour
	eco.RateUpgrade.Scaling = 1.75
	eco.CapacityUpgrade.BaseCost = 40
	eco.CapacityUpgrade.Scaling = 1.75
	return eco
}

// EconomyPreset returns the named preset.
func EconomyPreset(name string) (Economy, error) {
	switch name {
	case PresetDefault:
		return DefaultEconomy(), nil
	case PresetCasual:
		return CasualEconomy(), nil
	case PresetHard:
		return HardEconomy(), nil
	default:
		return Economy{}, fmt.Errorf("%w: unknown economy preset %q", production.ErrConfiguration, name)
	}
}
