// Package annotations persists per-profile bookmarks and preferences in a
// key-value store. Values are JSON snapshots overwritten wholesale on
// every change; last write wins and nothing is partially updated.
package annotations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultProfile scopes annotations when the client does not identify
// itself.
const DefaultProfile = "default"

// featuredTTL keeps daily featured-bill and dismissal keys from piling up.
const featuredTTL = 48 * time.Hour

// Preferences are the client display settings echoed back on load.
type Preferences struct {
	DarkMode bool   `json:"dark_mode"`
	Language string `json:"language"`
}

// SavedSearch is a named snapshot of a filter state, stored as its URL
// query encoding.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a Redis-backed annotation store.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore connects to Redis from a URL and verifies connectivity.
func NewStore(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewStoreWithClient(client), nil
}

// NewStoreWithClient wraps an existing Redis client.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client, prefix: "gabills:"}
}

// Ping checks the backing store.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) profileKey(profile, kind string) string {
	if profile == "" {
		profile = DefaultProfile
	}
	return s.prefix + "profile:" + profile + ":" + kind
}

// Favorites returns the favorited doc numbers for a profile, in the order
// they were added.
func (s *Store) Favorites(ctx context.Context, profile string) ([]string, error) {
	var favs []string
	err := s.getJSON(ctx, s.profileKey(profile, "favorites"), &favs)
	return favs, err
}

// AddFavorite appends a doc number unless already present.
func (s *Store) AddFavorite(ctx context.Context, profile, docNumber string) error {
	favs, err := s.Favorites(ctx, profile)
	if err != nil {
		return err
	}
	for _, f := range favs {
		if f == docNumber {
			return nil
		}
	}
	return s.setJSON(ctx, s.profileKey(profile, "favorites"), append(favs, docNumber), 0)
}

// RemoveFavorite drops a doc number from the favorites list.
func (s *Store) RemoveFavorite(ctx context.Context, profile, docNumber string) error {
	favs, err := s.Favorites(ctx, profile)
	if err != nil {
		return err
	}
	kept := favs[:0]
	for _, f := range favs {
		if f != docNumber {
			kept = append(kept, f)
		}
	}
	return s.setJSON(ctx, s.profileKey(profile, "favorites"), kept, 0)
}

// ReadMarks returns the doc numbers marked as read.
func (s *Store) ReadMarks(ctx context.Context, profile string) ([]string, error) {
	var reads []string
	err := s.getJSON(ctx, s.profileKey(profile, "reads"), &reads)
	return reads, err
}

// MarkRead records a bill as read.
func (s *Store) MarkRead(ctx context.Context, profile, docNumber string) error {
	reads, err := s.ReadMarks(ctx, profile)
	if err != nil {
		return err
	}
	for _, r := range reads {
		if r == docNumber {
			return nil
		}
	}
	return s.setJSON(ctx, s.profileKey(profile, "reads"), append(reads, docNumber), 0)
}

// MarkUnread removes a read marker.
func (s *Store) MarkUnread(ctx context.Context, profile, docNumber string) error {
	reads, err := s.ReadMarks(ctx, profile)
	if err != nil {
		return err
	}
	kept := reads[:0]
	for _, r := range reads {
		if r != docNumber {
			kept = append(kept, r)
		}
	}
	return s.setJSON(ctx, s.profileKey(profile, "reads"), kept, 0)
}

// Preferences returns the stored display settings, zero values when none
// were saved yet.
func (s *Store) Preferences(ctx context.Context, profile string) (Preferences, error) {
	prefs := Preferences{Language: "en"}
	err := s.getJSON(ctx, s.profileKey(profile, "prefs"), &prefs)
	return prefs, err
}

// SetPreferences overwrites the display settings.
func (s *Store) SetPreferences(ctx context.Context, profile string, prefs Preferences) error {
	return s.setJSON(ctx, s.profileKey(profile, "prefs"), prefs, 0)
}

// SavedSearches lists the profile's saved search presets, newest first.
func (s *Store) SavedSearches(ctx context.Context, profile string) ([]SavedSearch, error) {
	var searches []SavedSearch
	err := s.getJSON(ctx, s.profileKey(profile, "searches"), &searches)
	return searches, err
}

// SaveSearch stores a named filter-state snapshot and returns it with its
// generated id.
func (s *Store) SaveSearch(ctx context.Context, profile, name, query string) (SavedSearch, error) {
	searches, err := s.SavedSearches(ctx, profile)
	if err != nil {
		return SavedSearch{}, err
	}
	search := SavedSearch{
		ID:        uuid.NewString(),
		Name:      name,
		Query:     query,
		CreatedAt: time.Now().UTC(),
	}
	updated := append([]SavedSearch{search}, searches...)
	if err := s.setJSON(ctx, s.profileKey(profile, "searches"), updated, 0); err != nil {
		return SavedSearch{}, err
	}
	return search, nil
}

// DeleteSearch removes a preset by id. Unknown ids are not an error.
func (s *Store) DeleteSearch(ctx context.Context, profile, id string) error {
	searches, err := s.SavedSearches(ctx, profile)
	if err != nil {
		return err
	}
	kept := searches[:0]
	for _, search := range searches {
		if search.ID != id {
			kept = append(kept, search)
		}
	}
	return s.setJSON(ctx, s.profileKey(profile, "searches"), kept, 0)
}

// FeaturedBill returns the cached bill-of-the-day doc number for a
// calendar date, "" when none is cached.
func (s *Store) FeaturedBill(ctx context.Context, date string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+"featured:"+date).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get featured bill: %w", err)
	}
	return val, nil
}

// SetFeaturedBill caches the bill-of-the-day selection for a date.
func (s *Store) SetFeaturedBill(ctx context.Context, date, docNumber string) error {
	if err := s.client.Set(ctx, s.prefix+"featured:"+date, docNumber, featuredTTL).Err(); err != nil {
		return fmt.Errorf("set featured bill: %w", err)
	}
	return nil
}

// DismissFeatured records that a profile dismissed the featured banner for
// a calendar date.
func (s *Store) DismissFeatured(ctx context.Context, profile, date string) error {
	key := s.profileKey(profile, "featured-dismissed:"+date)
	if err := s.client.Set(ctx, key, "1", featuredTTL).Err(); err != nil {
		return fmt.Errorf("dismiss featured: %w", err)
	}
	return nil
}

// FeaturedDismissed reports whether the profile dismissed the banner for a
// date.
func (s *Store) FeaturedDismissed(ctx context.Context, profile, date string) (bool, error) {
	key := s.profileKey(profile, "featured-dismissed:"+date)
	_, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get featured dismissal: %w", err)
	}
	return true, nil
}

func (s *Store) getJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
