package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"cabbooking/internal/utils"
)

type DiscountType string

const (
	DiscountFlat DiscountType = "FLAT"
	DiscountPct  DiscountType = "PCT"
)

// Offer is a promotional discount rule addressed by a unique code.
type Offer struct {
	ID         int64        `json:"id"`
	Code       string       `json:"code"`
	Type       DiscountType `json:"discount_type"`
	Value      float64      `json:"value"`
	CapINR     *int64       `json:"cap_inr,omitempty"`
	ValidFrom  *time.Time   `json:"valid_from,omitempty"`
	ValidTo    *time.Time   `json:"valid_to,omitempty"`
	Conditions Conditions   `json:"conditions"`
	Active     bool         `json:"active"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ValidAt reports whether now falls inside the optional validity window.
func (o Offer) ValidAt(now time.Time) bool {
	if o.ValidFrom != nil && now.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidTo != nil && now.After(*o.ValidTo) {
		return false
	}
	return true
}

// Amount computes the discount on base before flooring.
func (o Offer) Amount(base int64) int64 {
	var amt int64
	switch o.Type {
	case DiscountFlat:
		amt = int64(o.Value)
	case DiscountPct:
		amt = utils.Percent(base, o.Value)
	}
	if o.CapINR != nil && amt > *o.CapINR {
		amt = *o.CapINR
	}
	if amt < 0 {
		amt = 0
	}
	return amt
}

// RuleInput is what a discount rule is evaluated against.
type RuleInput struct {
	FareINR    int64
	OriginSlug string
	CarType    CarType
}

// Rule is one typed offer condition.
type Rule interface {
	Key() string
	Allows(in RuleInput) bool
}

type MinFareRule struct{ MinINR int64 }

func (r MinFareRule) Key() string { return "minFare" }
func (r MinFareRule) Allows(in RuleInput) bool { return in.FareINR >= r.MinINR }

// CityRule restricts the offer to routes starting in one city.
type CityRule struct{ Slug string }

func (r CityRule) Key() string { return "city" }
func (r CityRule) Allows(in RuleInput) bool { return in.OriginSlug == r.Slug }

type CarTypeRule struct{ Types []CarType }

func (r CarTypeRule) Key() string { return "carTypes" }
func (r CarTypeRule) Allows(in RuleInput) bool {
	for _, t := range r.Types {
		if t == in.CarType {
			return true
		}
	}
	return false
}

// Conditions is the ordered rule set stored as a JSON object in offers.conditions.
type Conditions []Rule

// Evaluate returns the key of the first failing rule, or "" when all pass.
func (c Conditions) Evaluate(in RuleInput) string {
	for _, r := range c {
		if !r.Allows(in) {
			return r.Key()
		}
	}
	return ""
}

func (c Conditions) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	for _, r := range c {
		switch v := r.(type) {
		case MinFareRule:
			m["minFare"] = v.MinINR
		case CityRule:
			m["city"] = v.Slug
		case CarTypeRule:
			m["carTypes"] = v.Types
		}
	}
	return json.Marshal(m)
}

func (c *Conditions) UnmarshalJSON(b []byte) error {
	parsed, err := ParseConditions(b)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseConditions turns the stored JSON object into typed rules.
// Unknown keys are rejected so a typo never silently disables a restriction.
func ParseConditions(raw []byte) (Conditions, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == "{}" {
		return Conditions{}, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("conditions must be a JSON object: %w", err)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := Conditions{}
	for _, k := range keys {
		v := m[k]
		switch k {
		case "minFare", "min_fare":
			var n float64
			if err := json.Unmarshal(v, &n); err != nil || n < 0 {
				return nil, fmt.Errorf("conditions.%s must be a non-negative number", k)
			}
			out = append(out, MinFareRule{MinINR: int64(n)})
		case "city", "originCity", "origin_city":
			var city string
			if err := json.Unmarshal(v, &city); err != nil || strings.TrimSpace(city) == "" {
				return nil, fmt.Errorf("conditions.%s must be a city name", k)
			}
			out = append(out, CityRule{Slug: utils.Slugify(city)})
		case "carTypes", "car_types", "carType", "car_type":
			var list []string
			if err := json.Unmarshal(v, &list); err != nil {
				var one string
				if err := json.Unmarshal(v, &one); err != nil {
					return nil, fmt.Errorf("conditions.%s must be a car type list", k)
				}
				list = []string{one}
			}
			rule := CarTypeRule{}
			for _, s := range list {
				ct, ok := ParseCarType(s)
				if !ok {
					return nil, fmt.Errorf("conditions.%s: unknown car type %q", k, s)
				}
				rule.Types = append(rule.Types, ct)
			}
			out = append(out, rule)
		default:
			return nil, fmt.Errorf("conditions: unknown key %q", k)
		}
	}
	return out, nil
}
