package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, body string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestNormalizeProperty(t *testing.T) {
	t.Run("prefers direct fields over metadata", func(t *testing.T) {
		raw := decodeRaw(t, `{
			"address": "12 Main St",
			"price": 450000,
			"listing_metadata": {"address": "overridden", "square_feet": 1800}
		}`)

		p := NormalizeProperty(raw)

		assert.Equal(t, "12 Main St", p.Address)
		assert.Equal(t, float64(450000), p.Price)
		assert.Equal(t, 1800, p.SquareFeet)
	})

	t.Run("parses metadata encoded as a JSON string", func(t *testing.T) {
		raw := decodeRaw(t, `{
			"listing_metadata": "{\"year_built\": 1987, \"property_type\": \"Condo\", \"features\": [\"Pool\", \"Garage\"]}"
		}`)

		p := NormalizeProperty(raw)

		assert.Equal(t, 1987, p.YearBuilt)
		assert.Equal(t, "Condo", p.PropertyType)
		assert.Equal(t, []string{"Pool", "Garage"}, p.Features)
	})

	t.Run("malformed metadata string degrades to empty object", func(t *testing.T) {
		raw := decodeRaw(t, `{
			"address": "7 Oak Ave",
			"listing_metadata": "{not json"
		}`)

		p := NormalizeProperty(raw)

		assert.Equal(t, "7 Oak Ave", p.Address)
		assert.Zero(t, p.SquareFeet)
		assert.Empty(t, p.PropertyType)
	})

	t.Run("extracts nested agent", func(t *testing.T) {
		raw := decodeRaw(t, `{
			"listing_metadata": {"agent": {"name": "Dana Reyes", "email": "dana@leasap.test", "phone": "555-0142"}}
		}`)

		p := NormalizeProperty(raw)

		assert.Equal(t, "Dana Reyes", p.Agent.Name)
		assert.Equal(t, "dana@leasap.test", p.Agent.Email)
		assert.Equal(t, "555-0142", p.Agent.Phone)
	})

	t.Run("coerces numeric strings", func(t *testing.T) {
		raw := decodeRaw(t, `{"price": "325000", "bedrooms": "3", "bathrooms": "2.5"}`)

		p := NormalizeProperty(raw)

		assert.Equal(t, float64(325000), p.Price)
		assert.Equal(t, 3, p.Bedrooms)
		assert.Equal(t, 2.5, p.Bathrooms)
	})

	t.Run("carries assignment fields", func(t *testing.T) {
		raw := decodeRaw(t, `{
			"is_assigned": true,
			"assigned_to_realtor_id": "r-42",
			"assigned_to_realtor_name": "Sam Ito"
		}`)

		p := NormalizeProperty(raw)

		assert.True(t, p.IsAssigned)
		assert.Equal(t, "r-42", p.AssignedToRealtorID)
		assert.Equal(t, "Sam Ito", p.AssignedToRealtorName)
	})

	t.Run("missing everything yields zero values", func(t *testing.T) {
		p := NormalizeProperty(map[string]any{})

		assert.Empty(t, p.ListingID)
		assert.Zero(t, p.Price)
		assert.Nil(t, p.Features)
		assert.False(t, p.IsAssigned)
	})
}

func TestNormalizeProperties(t *testing.T) {
	rawList := []map[string]any{
		decodeRaw(t, `{"listing_id": "L1"}`),
		decodeRaw(t, `{"listing_id": "L2", "listing_metadata": "broken"}`),
	}

	props := NormalizeProperties(rawList)

	require.Len(t, props, 2)
	assert.Equal(t, "L1", props[0].ListingID)
	// the bad metadata record still survives
	assert.Equal(t, "L2", props[1].ListingID)
}
