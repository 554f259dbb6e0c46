package tips

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverbend-maps/gagemap/internal/model"
	"github.com/riverbend-maps/gagemap/internal/store"
)

func intPtr(i int) *int { return &i }

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "tips.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return NewService(s, nil)
}

func TestResolveKey(t *testing.T) {
	tests := []struct {
		name string
		in   KeyInput
		want string
		ok   bool
	}{
		{"explicit key verbatim", KeyInput{Key: "usgs:07055660"}, "usgs:07055660", true},
		{"custom key verbatim", KeyInput{Key: "custom:3"}, "custom:3", true},
		{"site id gets prefix", KeyInput{SiteID: "07055660"}, "usgs:07055660", true},
		{"marker index zero is valid", KeyInput{MarkerIndex: intPtr(0)}, "custom:0", true},
		{"marker index nonzero", KeyInput{MarkerIndex: intPtr(12)}, "custom:12", true},
		{"key wins over site id", KeyInput{Key: "custom:1", SiteID: "07055660"}, "custom:1", true},
		{"site id wins over index", KeyInput{SiteID: "07055660", MarkerIndex: intPtr(2)}, "usgs:07055660", true},
		{"nothing set", KeyInput{}, "", false},
		{"unprefixed key rejected", KeyInput{Key: "07055660"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveKey(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVisibleTo(t *testing.T) {
	group := []model.Tip{
		{ID: "a", UserID: "alice", Status: model.TipStatusPublished},
		{ID: "b", UserID: "alice", Status: model.TipStatusDraft},
		{ID: "c", UserID: "bob", Status: model.TipStatusDraft},
		{ID: "d", UserID: "", Status: model.TipStatusPublished},
	}

	ids := func(tips []model.Tip) []string {
		var out []string
		for _, tip := range tips {
			out = append(out, tip.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "d"}, ids(VisibleTo(group, "")), "anonymous sees published only")
	assert.Equal(t, []string{"a", "b", "d"}, ids(VisibleTo(group, "alice")), "author sees own drafts")
	assert.Equal(t, []string{"a", "c", "d"}, ids(VisibleTo(group, "bob")))
	assert.Equal(t, []string{"a", "d"}, ids(VisibleTo(group, "carol")), "strangers never see drafts")
}

func TestCreateAndListRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		KeyInput: KeyInput{SiteID: "07055660"},
		Text:     "low water crossing flooded after rain",
		UserID:   "alice",
		Publish:  true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.TipStatusPublished, created.Status)
	assert.WithinDuration(t, time.Now(), created.Timestamp, 5*time.Second)

	listed, err := svc.List(ctx, KeyInput{Key: "usgs:07055660"}, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Text: "no key"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Create(ctx, CreateInput{KeyInput: KeyInput{SiteID: "07055660"}, Text: "   "})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateDefaultsToDraft(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		KeyInput: KeyInput{MarkerIndex: intPtr(0)},
		Text:     "trailhead parking fills by 9am",
		UserID:   "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, model.TipStatusDraft, created.Status)

	// Anonymous viewers cannot see the draft, the author can.
	anon, err := svc.List(ctx, KeyInput{Key: "custom:0"}, "")
	require.NoError(t, err)
	assert.Empty(t, anon)

	own, err := svc.List(ctx, KeyInput{Key: "custom:0"}, "alice")
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestUpdateByIDAndByIndex(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key := KeyInput{SiteID: "07055660"}

	first, err := svc.Create(ctx, CreateInput{KeyInput: key, Text: "first", UserID: "alice", Publish: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{KeyInput: key, Text: "second", UserID: "alice", Publish: true})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, key, TipRef{ID: first.ID}, "first, revised", "https://example.com/p.jpg")
	require.NoError(t, err)
	assert.Equal(t, "first, revised", updated.Text)
	assert.Equal(t, first.ID, updated.ID, "update keeps the id")

	updated, err = svc.Update(ctx, key, TipRef{Index: intPtr(1)}, "second, revised", "")
	require.NoError(t, err)
	assert.Equal(t, "second, revised", updated.Text)

	_, err = svc.Update(ctx, key, TipRef{Index: intPtr(9)}, "nope", "")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Update(ctx, key, TipRef{ID: "missing-id"}, "nope", "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key := KeyInput{SiteID: "07055660"}

	first, err := svc.Create(ctx, CreateInput{KeyInput: key, Text: "first", Publish: true})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateInput{KeyInput: key, Text: "second", Publish: true})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, key, TipRef{ID: first.ID}))

	listed, err := svc.List(ctx, key, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)

	assert.ErrorIs(t, svc.Delete(ctx, key, TipRef{ID: first.ID}), model.ErrNotFound)
}

func TestPublishOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key := KeyInput{SiteID: "07055660"}

	draft, err := svc.Create(ctx, CreateInput{KeyInput: key, Text: "draft", UserID: "alice"})
	require.NoError(t, err)

	_, err = svc.Publish(ctx, key, TipRef{ID: draft.ID}, "bob")
	assert.ErrorIs(t, err, model.ErrForbidden)

	published, err := svc.Publish(ctx, key, TipRef{ID: draft.ID}, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.TipStatusPublished, published.Status)

	// Publishing again is a no-op, not an error.
	again, err := svc.Publish(ctx, key, TipRef{ID: draft.ID}, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.TipStatusPublished, again.Status)
}

func TestPublishAnonymousRequesterIsAllowed(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	key := KeyInput{SiteID: "07055660"}

	draft, err := svc.Create(ctx, CreateInput{KeyInput: key, Text: "draft", UserID: "alice"})
	require.NoError(t, err)

	// The guard trips only when both sides carry an identity.
	published, err := svc.Publish(ctx, key, TipRef{ID: draft.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, model.TipStatusPublished, published.Status)
}

func TestMigrateLegacyKeys(t *testing.T) {
	byKey := model.TipsByKey{
		"07055660":      {{ID: "a", Text: "legacy gage tip"}},
		"3":             {{ID: "b", Text: "legacy marker tip"}},
		"usgs:07263450": {{ID: "c", Text: "already prefixed"}},
		"custom:0":      {{ID: "d"}},
	}

	migrated, moved := MigrateLegacyKeys(byKey)
	assert.Equal(t, 2, moved)
	assert.Contains(t, migrated, "usgs:07055660")
	assert.Contains(t, migrated, "custom:3")
	assert.Contains(t, migrated, "usgs:07263450")
	assert.Contains(t, migrated, "custom:0")
	assert.NotContains(t, migrated, "07055660")
	assert.NotContains(t, migrated, "usgs:usgs:07263450")

	again, moved := MigrateLegacyKeys(migrated)
	assert.Equal(t, 0, moved)
	assert.Equal(t, migrated, again)
}

func TestMigrateLegacyMergesCollisions(t *testing.T) {
	byKey := model.TipsByKey{
		"07055660":      {{ID: "old"}},
		"usgs:07055660": {{ID: "new"}},
	}
	migrated, moved := MigrateLegacyKeys(byKey)
	assert.Equal(t, 1, moved)
	assert.Len(t, migrated["usgs:07055660"], 2)
}

func TestMigrateLegacyService(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seed := model.TipsByKey{
		"07055660": {{ID: "a", Text: "legacy", Status: model.TipStatusPublished}},
	}
	require.NoError(t, store.Save(ctx, svc.store, store.CollectionTips, seed))

	moved, err := svc.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	listed, err := svc.List(ctx, KeyInput{SiteID: "07055660"}, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "a", listed[0].ID)

	moved, err = svc.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}
