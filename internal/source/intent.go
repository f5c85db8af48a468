package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/summit/cfo/internal/domain"
)

type intentsFile struct {
	Intents []intentRecord `json:"intents"`
}

type intentRecord struct {
	ChangeID    string          `json:"change_id"`
	Scope       json.RawMessage `json:"scope"`
	Desired     json.RawMessage `json:"desired"`
	Current     json.RawMessage `json:"current"`
	DiffSummary json.RawMessage `json:"diff_summary"`
}

// LoadIntents reads, schema-validates, and decodes the intent file at
// path. The file may be a bare intent object or an {intents: [...]}
// wrapper around several.
func LoadIntents(path string) ([]domain.IntentChange, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intents file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse intents JSON: %w", err)
	}
	if err := intentSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("intents file failed schema validation: %w", err)
	}

	records, err := decodeIntentRecords(data)
	if err != nil {
		return nil, err
	}

	changes := make([]domain.IntentChange, 0, len(records))
	for _, rec := range records {
		change, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("intent %q: %w", rec.ChangeID, err)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func decodeIntentRecords(data []byte) ([]intentRecord, error) {
	var wrapped intentsFile
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Intents != nil {
		return wrapped.Intents, nil
	}

	var bare intentRecord
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("decode intents file: %w", err)
	}
	return []intentRecord{bare}, nil
}

func (r intentRecord) toDomain() (domain.IntentChange, error) {
	desired, err := decodeOpaque(r.Desired)
	if err != nil {
		return domain.IntentChange{}, fmt.Errorf("desired: %w", err)
	}
	current, err := decodeOpaque(r.Current)
	if err != nil {
		return domain.IntentChange{}, fmt.Errorf("current: %w", err)
	}
	scope, err := decodeOpaqueString(r.Scope)
	if err != nil {
		return domain.IntentChange{}, fmt.Errorf("scope: %w", err)
	}
	diffSummary, err := decodeOpaqueString(r.DiffSummary)
	if err != nil {
		return domain.IntentChange{}, fmt.Errorf("diff_summary: %w", err)
	}

	return domain.IntentChange{
		ChangeID:    r.ChangeID,
		Scope:       scope,
		Desired:     desired,
		Current:     current,
		DiffSummary: diffSummary,
	}, nil
}

func decodeOpaque(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeOpaqueString accepts either a bare JSON string or any other
// JSON value, re-serializing non-string values to their compact JSON
// form. scope and diff_summary are documented as free-form but the
// domain model carries them as strings for straightforward logging
// and comparison.
func decodeOpaqueString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	return string(raw), nil
}
