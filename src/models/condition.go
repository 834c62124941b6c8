package models

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// ConditionGrade is the physical wear classification of a card. The grade
// drives the trade multiplier and the buyback payout percentages.
type ConditionGrade string

const (
	ConditionNearMint         ConditionGrade = "NM"
	ConditionLightlyPlayed    ConditionGrade = "LP"
	ConditionModeratelyPlayed ConditionGrade = "MP"
	ConditionHeavilyPlayed    ConditionGrade = "HP"
	ConditionDamaged          ConditionGrade = "DMG"
)

var conditionDisplayNames = map[ConditionGrade]string{
	ConditionNearMint:         "Near Mint",
	ConditionLightlyPlayed:    "Lightly Played",
	ConditionModeratelyPlayed: "Moderately Played",
	ConditionHeavilyPlayed:    "Heavily Played",
	ConditionDamaged:          "Damaged",
}

// DisplayName returns the human-readable name of the grade, or the raw code
// if the grade is unknown.
func (g ConditionGrade) DisplayName() string {
	if name, ok := conditionDisplayNames[g]; ok {
		return name
	}
	return string(g)
}

// ConditionRate holds the fixed ratios applied to a card of a given grade.
// The percentages apply to the multiplier-adjusted value, never to the raw
// market price.
type ConditionRate struct {
	Multiplier         decimal.Decimal `json:"multiplier"`
	StoreCreditPercent decimal.Decimal `json:"store_credit_percent"`
	CashPercent        decimal.Decimal `json:"cash_percent"`
}

// ConditionRates maps every supported grade to its rate table entry.
type ConditionRates map[ConditionGrade]ConditionRate

// DefaultConditionRates returns the reference rate table. These are business
// parameters; deployments can override them via CONDITION_RATES_PATH without
// touching code.
func DefaultConditionRates() ConditionRates {
	return ConditionRates{
		ConditionNearMint:         {Multiplier: decimal.NewFromFloat(1.0), StoreCreditPercent: decimal.NewFromInt(70), CashPercent: decimal.NewFromInt(60)},
		ConditionLightlyPlayed:    {Multiplier: decimal.NewFromFloat(0.9), StoreCreditPercent: decimal.NewFromInt(60), CashPercent: decimal.NewFromInt(50)},
		ConditionModeratelyPlayed: {Multiplier: decimal.NewFromFloat(0.75), StoreCreditPercent: decimal.NewFromInt(45), CashPercent: decimal.NewFromInt(35)},
		ConditionHeavilyPlayed:    {Multiplier: decimal.NewFromFloat(0.5), StoreCreditPercent: decimal.NewFromInt(30), CashPercent: decimal.NewFromInt(25)},
		ConditionDamaged:          {Multiplier: decimal.NewFromFloat(0.25), StoreCreditPercent: decimal.NewFromInt(15), CashPercent: decimal.NewFromInt(10)},
	}
}

// Validate checks that the table covers every grade and that each entry is
// within its sane range (multiplier in (0,1], percents in (0,100]).
func (r ConditionRates) Validate() error {
	for grade := range conditionDisplayNames {
		rate, ok := r[grade]
		if !ok {
			return fmt.Errorf("condition rates: missing entry for grade %s", grade)
		}
		if rate.Multiplier.LessThanOrEqual(decimal.Zero) || rate.Multiplier.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("condition rates: multiplier for %s must be in (0,1], got %s", grade, rate.Multiplier)
		}
		for name, pct := range map[string]decimal.Decimal{
			"store_credit_percent": rate.StoreCreditPercent,
			"cash_percent":         rate.CashPercent,
		} {
			if pct.LessThanOrEqual(decimal.Zero) || pct.GreaterThan(decimal.NewFromInt(100)) {
				return fmt.Errorf("condition rates: %s for %s must be in (0,100], got %s", name, grade, pct)
			}
		}
	}
	return nil
}

// LoadConditionRates reads an override rate table from a JSON file. An empty
// path returns the compiled-in defaults.
func LoadConditionRates(path string) (ConditionRates, error) {
	if path == "" {
		return DefaultConditionRates(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading condition rates file %s: %w", path, err)
	}
	var rates ConditionRates
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("parsing condition rates file %s: %w", path, err)
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return rates, nil
}

// NormalizeCondition maps free-form condition descriptions from import files
// ("near mint", "Moderately Played", "heavily_played") to a grade code.
// Returns false when the description matches no known grade.
func NormalizeCondition(raw string) (ConditionGrade, bool) {
	switch {
	case containsFold(raw, "near"), equalsFold(raw, "nm"), equalsFold(raw, "mint"):
		return ConditionNearMint, true
	case containsFold(raw, "light"), equalsFold(raw, "lp"):
		return ConditionLightlyPlayed, true
	case containsFold(raw, "moderate"), equalsFold(raw, "mp"):
		return ConditionModeratelyPlayed, true
	case containsFold(raw, "heavy"), equalsFold(raw, "hp"):
		return ConditionHeavilyPlayed, true
	case containsFold(raw, "damage"), equalsFold(raw, "dmg"):
		return ConditionDamaged, true
	}
	return "", false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(s)), substr)
}

func equalsFold(s, target string) bool {
	return strings.EqualFold(strings.TrimSpace(s), target)
}
