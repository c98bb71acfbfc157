package models

import (
	"strings"

	"gorm.io/gorm"
)

// Package plans, one per tier
const (
	PlanBasic  = "basic"
	PlanBronze = "bronze"
	PlanSilver = "silver"
	PlanGold   = "gold"
)

// Plans lists the tiers in ascending order.
var Plans = []string{PlanBasic, PlanBronze, PlanSilver, PlanGold}

// Package is a subscription pricing plan with up to four tiers.
type Package struct {
	gorm.Model
	PackageName string  `json:"package_name" gorm:"type:varchar(100);uniqueIndex"`
	NPeriod     string  `json:"n_period" gorm:"type:varchar(15)"`
	NAmount     float64 `json:"n_amount"`
	BPeriod     string  `json:"b_period" gorm:"type:varchar(15)"`
	BAmount     float64 `json:"b_amount"`
	SPeriod     string  `json:"s_period" gorm:"type:varchar(15)"`
	SAmount     float64 `json:"s_amount"`
	GPeriod     string  `json:"g_period" gorm:"type:varchar(15)"`
	GAmount     float64 `json:"g_amount"`
}

// Tier is one period/amount pair of a package.
type Tier struct {
	Plan   string  `json:"plan"`
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}

// Tier resolves a plan name to its period and amount. ok is false for an
// unknown plan or an empty tier.
func (p Package) Tier(plan string) (Tier, bool) {
	var t Tier
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case PlanBasic:
		t = Tier{Plan: PlanBasic, Period: p.NPeriod, Amount: p.NAmount}
	case PlanBronze:
		t = Tier{Plan: PlanBronze, Period: p.BPeriod, Amount: p.BAmount}
	case PlanSilver:
		t = Tier{Plan: PlanSilver, Period: p.SPeriod, Amount: p.SAmount}
	case PlanGold:
		t = Tier{Plan: PlanGold, Period: p.GPeriod, Amount: p.GAmount}
	default:
		return Tier{}, false
	}
	if t.Period == "" || t.Amount <= 0 {
		return Tier{}, false
	}
	return t, true
}

// Tiers returns the non-empty tiers.
func (p Package) Tiers() []Tier {
	var tiers []Tier
	for _, plan := range Plans {
		if t, ok := p.Tier(plan); ok {
			tiers = append(tiers, t)
		}
	}
	return tiers
}
