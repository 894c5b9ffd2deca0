package annotations_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/peachstatelabs/gabills/internal/annotations"
)

func newStore(t *testing.T) *annotations.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return annotations.NewStoreWithClient(client)
}

func TestFavoritesLifecycle(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	favs, err := store.Favorites(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, favs)

	require.NoError(t, store.AddFavorite(ctx, "alice", "HB 1"))
	require.NoError(t, store.AddFavorite(ctx, "alice", "SB 2"))
	require.NoError(t, store.AddFavorite(ctx, "alice", "HB 1")) // no duplicate

	favs, err = store.Favorites(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"HB 1", "SB 2"}, favs)

	// Profiles are isolated.
	favs, err = store.Favorites(ctx, "bob")
	require.NoError(t, err)
	require.Empty(t, favs)

	require.NoError(t, store.RemoveFavorite(ctx, "alice", "HB 1"))
	favs, err = store.Favorites(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, []string{"SB 2"}, favs)
}

func TestReadMarks(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkRead(ctx, "", "HB 7"))
	reads, err := store.ReadMarks(ctx, annotations.DefaultProfile)
	require.NoError(t, err)
	require.Equal(t, []string{"HB 7"}, reads)

	require.NoError(t, store.MarkUnread(ctx, "", "HB 7"))
	reads, err = store.ReadMarks(ctx, "")
	require.NoError(t, err)
	require.Empty(t, reads)
}

func TestPreferences(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	prefs, err := store.Preferences(ctx, "alice")
	require.NoError(t, err)
	require.False(t, prefs.DarkMode)
	require.Equal(t, "en", prefs.Language)

	require.NoError(t, store.SetPreferences(ctx, "alice", annotations.Preferences{DarkMode: true, Language: "es"}))
	prefs, err = store.Preferences(ctx, "alice")
	require.NoError(t, err)
	require.True(t, prefs.DarkMode)
	require.Equal(t, "es", prefs.Language)
}

func TestSavedSearches(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first, err := store.SaveSearch(ctx, "alice", "gun bills", "issues=gun-control&type=HB")
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := store.SaveSearch(ctx, "alice", "recent", "sortBy=date-desc")
	require.NoError(t, err)

	searches, err := store.SavedSearches(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, searches, 2)
	// Newest first.
	require.Equal(t, second.ID, searches[0].ID)
	require.Equal(t, "gun bills", searches[1].Name)

	require.NoError(t, store.DeleteSearch(ctx, "alice", first.ID))
	searches, err = store.SavedSearches(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, searches, 1)

	require.NoError(t, store.DeleteSearch(ctx, "alice", "missing"))
}

func TestFeaturedBillCache(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	doc, err := store.FeaturedBill(ctx, "2026-09-01")
	require.NoError(t, err)
	require.Empty(t, doc)

	require.NoError(t, store.SetFeaturedBill(ctx, "2026-09-01", "HB 42"))
	doc, err = store.FeaturedBill(ctx, "2026-09-01")
	require.NoError(t, err)
	require.Equal(t, "HB 42", doc)

	dismissed, err := store.FeaturedDismissed(ctx, "alice", "2026-09-01")
	require.NoError(t, err)
	require.False(t, dismissed)

	require.NoError(t, store.DismissFeatured(ctx, "alice", "2026-09-01"))
	dismissed, err = store.FeaturedDismissed(ctx, "alice", "2026-09-01")
	require.NoError(t, err)
	require.True(t, dismissed)

	// Other profiles keep their own banner state.
	dismissed, err = store.FeaturedDismissed(ctx, "bob", "2026-09-01")
	require.NoError(t, err)
	require.False(t, dismissed)
}
