// backend/src/models/canonical.go
package models

import "github.com/shopspring/decimal"

// CanonicalCardRow is the unified, intermediate representation of one row of
// an inventory import file. The parser is responsible for populating as many
// of these fields as possible directly from the source file, including the
// normalized condition grade.
type CanonicalCardRow struct {
	Row              int             `json:"row"`
	ScryfallID       string          `json:"scryfall_id"`
	Name             string          `json:"name"`
	SetCode          string          `json:"set_code"`
	SetName          string          `json:"set_name"`
	CollectorNumber  string          `json:"collector_number"`
	Rarity           string          `json:"rarity"`
	Foil             bool            `json:"foil"`
	Language         string          `json:"language"`
	Quantity         int             `json:"quantity"`
	Condition        ConditionGrade  `json:"condition"`
	PurchasePriceUSD decimal.Decimal `json:"purchase_price_usd"`
	RawLine          string          `json:"raw_line"`
}

// ImportRowError records why a single row was skipped during import.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes an inventory import run. Rows that fail never abort
// the run; they are collected here and the remaining rows proceed.
type ImportResult struct {
	Total    int              `json:"total"`
	Inserted int              `json:"inserted"`
	Updated  int              `json:"updated"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}
