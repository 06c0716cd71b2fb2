package utils

import (
	"encoding/json"
	"net/url"
	"strings"
)

// UTM holds first-touch campaign attribution.
type UTM struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
	Term     string `json:"term,omitempty"`
	Content  string `json:"content,omitempty"`
}

func (u UTM) Empty() bool {
	return u == UTM{}
}

// ParseUTMCookie reads the first-touch cookie value. Both a JSON object and a
// URL-encoded query ("utm_source=x&utm_medium=y") are accepted; unknown or
// malformed input yields an empty UTM.
func ParseUTMCookie(raw string) UTM {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UTM{}
	}
	if dec, err := url.QueryUnescape(raw); err == nil && strings.HasPrefix(strings.TrimSpace(dec), "{") {
		raw = strings.TrimSpace(dec)
	}

	var u UTM
	if strings.HasPrefix(raw, "{") {
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return UTM{}
		}
		get := func(keys ...string) string {
			for _, k := range keys {
				if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
					return clip(v)
				}
			}
			return ""
		}
		u.Source = get("utm_source", "source")
		u.Medium = get("utm_medium", "medium")
		u.Campaign = get("utm_campaign", "campaign")
		u.Term = get("utm_term", "term")
		u.Content = get("utm_content", "content")
		return u
	}

	q, err := url.ParseQuery(raw)
	if err != nil {
		return UTM{}
	}
	get := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(q.Get(k)); v != "" {
				return clip(v)
			}
		}
		return ""
	}
	u.Source = get("utm_source", "source")
	u.Medium = get("utm_medium", "medium")
	u.Campaign = get("utm_campaign", "campaign")
	u.Term = get("utm_term", "term")
	u.Content = get("utm_content", "content")
	return u
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120]
	}
	return s
}
