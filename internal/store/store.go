// Package store persists personalization profiles. ProfileStore is the raw
// persistence contract with swappable implementations (in-memory for tests,
// SQLite for production); Service layers validation and profile computation
// on top so the stored computed profile is always derived from the stored
// questionnaire, never hand-edited.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fineprint-dev/fineprint/internal/personalize"
	"github.com/fineprint-dev/fineprint/internal/questionnaire"
	"github.com/fineprint-dev/fineprint/internal/schema"
)

// ProfileStore is the raw persistence interface. Get returns nil (not an
// error) when no profile exists for the user; a lookup miss is a normal
// outcome. Implementations must tolerate concurrent requests for the same
// user id; last-writer-wins is acceptable.
type ProfileStore interface {
	Put(ctx context.Context, profile schema.StoredProfile) error
	Get(ctx context.Context, userID string) (*schema.StoredProfile, error)
	Delete(ctx context.Context, userID string) (bool, error)
}

// Service validates questionnaires and recomputes the personalization
// profile on every save and section update.
type Service struct {
	store ProfileStore
	now   func() time.Time
}

// NewService wraps a ProfileStore.
func NewService(store ProfileStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Save validates q, computes its personalization profile, and persists both.
// Invalid input returns a *questionnaire.ValidationError with per-field
// messages and persists nothing.
func (s *Service) Save(ctx context.Context, q schema.Questionnaire) (schema.StoredProfile, error) {
	if err := questionnaire.AsError(questionnaire.Validate(q)); err != nil {
		return schema.StoredProfile{}, err
	}

	now := s.now().UTC()
	profile := schema.StoredProfile{
		Questionnaire: q,
		Computed:      personalize.Compute(q),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if existing, err := s.store.Get(ctx, q.UserID); err != nil {
		return schema.StoredProfile{}, fmt.Errorf("store: lookup before save: %w", err)
	} else if existing != nil {
		profile.CreatedAt = existing.CreatedAt
	}

	if err := s.store.Put(ctx, profile); err != nil {
		return schema.StoredProfile{}, fmt.Errorf("store: save profile: %w", err)
	}
	return profile, nil
}

// Get returns the stored profile for userID, or nil when none exists.
func (s *Service) Get(ctx context.Context, userID string) (*schema.StoredProfile, error) {
	return s.store.Get(ctx, userID)
}

// UpdateSection replaces one top-level questionnaire section, revalidates the
// merged questionnaire, and recomputes the personalization profile. The rest
// of the questionnaire is untouched.
func (s *Service) UpdateSection(ctx context.Context, userID, section string, data json.RawMessage) (schema.StoredProfile, error) {
	if !questionnaire.ValidSection(section) {
		return schema.StoredProfile{}, &questionnaire.ValidationError{Fields: []questionnaire.FieldError{{
			Field:   section,
			Message: "is not a replaceable questionnaire section",
		}}}
	}

	existing, err := s.store.Get(ctx, userID)
	if err != nil {
		return schema.StoredProfile{}, fmt.Errorf("store: lookup for update: %w", err)
	}
	if existing == nil {
		return schema.StoredProfile{}, fmt.Errorf("store: no profile for user %q", userID)
	}

	q := existing.Questionnaire
	if err := unmarshalSection(&q, section, data); err != nil {
		return schema.StoredProfile{}, &questionnaire.ValidationError{Fields: []questionnaire.FieldError{{
			Field:   section,
			Message: fmt.Sprintf("payload does not match section shape: %v", err),
		}}}
	}
	if err := questionnaire.AsError(questionnaire.Validate(q)); err != nil {
		return schema.StoredProfile{}, err
	}

	profile := schema.StoredProfile{
		Questionnaire: q,
		Computed:      personalize.Compute(q),
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     s.now().UTC(),
	}
	if err := s.store.Put(ctx, profile); err != nil {
		return schema.StoredProfile{}, fmt.Errorf("store: update profile: %w", err)
	}
	return profile, nil
}

// Delete removes the profile for userID, reporting whether one existed.
func (s *Service) Delete(ctx context.Context, userID string) (bool, error) {
	return s.store.Delete(ctx, userID)
}

// unmarshalSection decodes data into the named section of q.
func unmarshalSection(q *schema.Questionnaire, section string, data json.RawMessage) error {
	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(data))
		d.DisallowUnknownFields()
		return d.Decode(v)
	}
	switch section {
	case "demographics":
		return dec(&q.Demographics)
	case "digitalBehavior":
		return dec(&q.DigitalBehavior)
	case "riskPreferences":
		return dec(&q.RiskPreferences)
	case "contextualFactors":
		return dec(&q.ContextualFactors)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
}
