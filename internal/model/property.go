package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Listing status values the backend is known to emit. The field is an
// enum-like free string, so unknown values pass through untouched.
var ListingStatuses = []string{"Available", "For Sale", "For Rent", "Sold", "Rented"}

type Agent struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Property is the normalized view over a raw backend property record.
type Property struct {
	ListingID             string   `json:"listing_id,omitempty"`
	Address               string   `json:"address,omitempty"`
	Price                 float64  `json:"price,omitempty"`
	Bedrooms              int      `json:"bedrooms,omitempty"`
	Bathrooms             float64  `json:"bathrooms,omitempty"`
	SquareFeet            int      `json:"square_feet,omitempty"`
	LotSizeSqft           int      `json:"lot_size_sqft,omitempty"`
	YearBuilt             int      `json:"year_built,omitempty"`
	PropertyType          string   `json:"property_type,omitempty"`
	ListingStatus         string   `json:"listing_status,omitempty"`
	DaysOnMarket          int      `json:"days_on_market,omitempty"`
	ListingDate           string   `json:"listing_date,omitempty"`
	Features              []string `json:"features,omitempty"`
	Agent                 Agent    `json:"agent"`
	Description           string   `json:"description,omitempty"`
	ImageURL              string   `json:"image_url,omitempty"`
	IsAssigned            bool     `json:"is_assigned"`
	AssignedToRealtorID   string   `json:"assigned_to_realtor_id,omitempty"`
	AssignedToRealtorName string   `json:"assigned_to_realtor_name,omitempty"`
}

// NormalizeProperty merges a raw record's top-level fields with its optional
// listing_metadata blob. The blob may arrive as a nested object or as a
// JSON-encoded string; a malformed string degrades to an empty object rather
// than failing the record. Every field resolves direct value first, then the
// metadata value, then the zero value.
func NormalizeProperty(raw map[string]any) Property {
	meta := parseMetadata(raw["listing_metadata"])

	pick := func(key string) any {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
		return meta[key]
	}

	agent := Agent{}
	if m, ok := asMap(pick("agent")); ok {
		agent.Name = asString(m["name"])
		agent.Email = asString(m["email"])
		agent.Phone = asString(m["phone"])
	}

	return Property{
		ListingID:             asString(pick("listing_id")),
		Address:               asString(pick("address")),
		Price:                 asFloat(pick("price")),
		Bedrooms:              asInt(pick("bedrooms")),
		Bathrooms:             asFloat(pick("bathrooms")),
		SquareFeet:            asInt(pick("square_feet")),
		LotSizeSqft:           asInt(pick("lot_size_sqft")),
		YearBuilt:             asInt(pick("year_built")),
		PropertyType:          asString(pick("property_type")),
		ListingStatus:         asString(pick("listing_status")),
		DaysOnMarket:          asInt(pick("days_on_market")),
		ListingDate:           asString(pick("listing_date")),
		Features:              asStringSlice(pick("features")),
		Agent:                 agent,
		Description:           asString(pick("description")),
		ImageURL:              asString(pick("image_url")),
		IsAssigned:            asBool(pick("is_assigned")),
		AssignedToRealtorID:   asString(pick("assigned_to_realtor_id")),
		AssignedToRealtorName: asString(pick("assigned_to_realtor_name")),
	}
}

// NormalizeProperties decodes and normalizes a list of raw records.
func NormalizeProperties(rawList []map[string]any) []Property {
	out := make([]Property, len(rawList))
	for i, raw := range rawList {
		out[i] = NormalizeProperty(raw)
	}
	return out
}

func parseMetadata(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(m), &parsed); err != nil {
			return map[string]any{}
		}
		return parsed
	default:
		return map[string]any{}
	}
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asInt(v any) int {
	return int(asFloat(v))
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

func asStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
