package manabox

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/manavault/backend/src/models"
)

const sampleHeader = "Name,Set code,Set name,Collector number,Foil,Rarity,Quantity,Scryfall ID,Purchase price,Condition,Language\n"

func TestParse_ValidRows(t *testing.T) {
	csvData := sampleHeader +
		`Lightning Bolt,2x2,Double Masters 2022,117,normal,uncommon,4,abc-123,1.50,near_mint,en` + "\n" +
		`"Fable of the Mirror-Breaker // Reflection of Kiki-Jiki",neo,Kamigawa,112,foil,rare,1,def-456,20.00,Lightly Played,ja` + "\n"

	rows, rowErrors, err := NewParser().Parse(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "Lightning Bolt", first.Name)
	assert.Equal(t, "2x2", first.SetCode)
	assert.Equal(t, "abc-123", first.ScryfallID)
	assert.Equal(t, 4, first.Quantity)
	assert.Equal(t, models.ConditionNearMint, first.Condition)
	assert.False(t, first.Foil)
	assert.True(t, first.PurchasePriceUSD.Equal(decimal.NewFromFloat(1.5)))

	second := rows[1]
	assert.Equal(t, "Fable of the Mirror-Breaker // Reflection of Kiki-Jiki", second.Name)
	assert.Equal(t, models.ConditionLightlyPlayed, second.Condition)
	assert.True(t, second.Foil)
	assert.Equal(t, "ja", second.Language)
}

func TestParse_MissingRequiredColumns(t *testing.T) {
	csvData := "Name,Quantity\nLightning Bolt,4\n"

	_, _, err := NewParser().Parse(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "scryfall id")
}

func TestParse_BadRowsCollectedNotFatal(t *testing.T) {
	csvData := sampleHeader +
		`Good Card,m21,Core 2021,1,normal,common,2,id-1,0.10,NM,en` + "\n" +
		`No Quantity,m21,Core 2021,2,normal,common,zero,id-2,0.10,NM,en` + "\n" +
		`Weird Grade,m21,Core 2021,3,normal,common,1,id-3,0.10,Sealed,en` + "\n" +
		`,m21,Core 2021,4,normal,common,1,id-4,0.10,NM,en` + "\n"

	rows, rowErrors, err := NewParser().Parse(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Good Card", rows[0].Name)

	require.Len(t, rowErrors, 3)
	assert.Equal(t, 3, rowErrors[0].Row)
	assert.Contains(t, rowErrors[0].Message, "quantity")
	assert.Contains(t, rowErrors[1].Message, "condition")
	assert.Contains(t, rowErrors[2].Message, "missing name")
}

func TestParse_DefaultsAppliedForOptionalColumns(t *testing.T) {
	csvData := "Name,Set code,Scryfall ID,Quantity,Condition\n" +
		"Counterspell,mh2,xyz-789,1,moderately played\n"

	rows, rowErrors, err := NewParser().Parse(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Empty(t, rowErrors)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, models.ConditionModeratelyPlayed, row.Condition)
	assert.Equal(t, "en", row.Language)
	assert.True(t, row.PurchasePriceUSD.IsZero())
	assert.False(t, row.Foil)
}
