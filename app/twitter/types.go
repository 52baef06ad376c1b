package twitter

import (
	"encoding/json"
	"time"
)

// Status is one retrieved document. Well-known provider fields are typed;
// everything else the provider returned is preserved verbatim in Extra so
// the persisted document table keeps the full payload.
type Status struct {
	IDStr     string
	FullText  *string
	CreatedAt string
	Lang      string

	// NotFound marks an absence: the provider was asked for this ID and
	// reported no retrievable content.
	NotFound bool

	Extra map[string]json.RawMessage
}

// Absent reports whether this status is an absence marker rather than a
// retrievable document.
func (s *Status) Absent() bool {
	return s.NotFound || s.FullText == nil
}

// Text returns the document text, or "" for absence markers.
func (s *Status) Text() string {
	if s.FullText == nil {
		return ""
	}
	return *s.FullText
}

func (s *Status) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["id_str"]; ok {
		if err := json.Unmarshal(raw, &s.IDStr); err != nil {
			return err
		}
		delete(fields, "id_str")
	}
	if raw, ok := fields["full_text"]; ok {
		if string(raw) != "null" {
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return err
			}
			s.FullText = &text
		}
		delete(fields, "full_text")
	}
	if raw, ok := fields["created_at"]; ok {
		if err := json.Unmarshal(raw, &s.CreatedAt); err != nil {
			return err
		}
		delete(fields, "created_at")
	}
	if raw, ok := fields["lang"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &s.Lang); err != nil {
			return err
		}
		delete(fields, "lang")
	}

	s.Extra = fields
	return nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(s.Extra)+5)
	for k, v := range s.Extra {
		fields[k] = v
	}

	put := func(key string, value interface{}) error {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		fields[key] = raw
		return nil
	}

	if err := put("id_str", s.IDStr); err != nil {
		return nil, err
	}
	if s.FullText != nil {
		if err := put("full_text", *s.FullText); err != nil {
			return nil, err
		}
	} else {
		fields["full_text"] = json.RawMessage("null")
	}
	if s.CreatedAt != "" {
		if err := put("created_at", s.CreatedAt); err != nil {
			return nil, err
		}
	}
	if s.Lang != "" {
		if err := put("lang", s.Lang); err != nil {
			return nil, err
		}
	}
	if s.NotFound {
		fields["not_found"] = json.RawMessage("true")
	}

	return json.Marshal(fields)
}

// Quota is the provider's rate-limit accounting for the lookup resource.
type Quota struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// LookupOptions carries provider-specific per-call options.
type LookupOptions struct {
	// TweetMode selects the text rendering; "extended" returns untruncated
	// full_text.
	TweetMode string
	// Map asks the provider to return an explicit entry for every requested
	// ID, with null marking unavailable documents.
	Map bool
}

// DefaultLookupOptions are the options the preparation pipeline uses:
// untruncated text and explicit absence markers.
func DefaultLookupOptions() LookupOptions {
	return LookupOptions{TweetMode: "extended", Map: true}
}
