package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/pkg/contentid"
	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

func sampleRecord() *minutes.Record {
	return &minutes.Record{
		Metadata:    minutes.Metadata{Title: "Fest Planning"},
		Attendees:   []minutes.Attendee{{Name: "Sakshi"}},
		Agenda:      []minutes.AgendaItem{},
		Decisions:   []string{"Book the hall"},
		ActionItems: []minutes.ActionItem{{Task: "approach sponsors", Responsible: "Nikitha", Deadline: "31/10/2025", Status: minutes.StatusPending}},
	}
}

func TestNew(t *testing.T) {
	s := New(sampleRecord(), "meeting.txt")

	assert.True(t, contentid.IsValid(s.ID, contentid.KindSession), s.ID)
	assert.Equal(t, "meeting.txt", s.Source)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	s := New(sampleRecord(), "meeting.txt")

	require.NoError(t, store.Save(ctx, s))
	s.Record.Decisions[0] = "changed after save"

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book the hall", got.Record.Decisions[0])

	got.Record.Decisions[0] = "changed after get"
	again, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book the hall", again.Record.Decisions[0])
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return now }

	old := New(sampleRecord(), "")
	require.NoError(t, store.Save(ctx, old))

	now = now.Add(2 * time.Hour)
	_, err := store.Get(ctx, old.ID)
	assert.True(t, mnerrors.IsNotFound(err))

	require.NoError(t, store.Save(ctx, New(sampleRecord(), "")))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	s := New(sampleRecord(), "")
	require.NoError(t, store.Save(ctx, s))

	require.NoError(t, store.Delete(ctx, s.ID))
	assert.True(t, mnerrors.IsNotFound(store.Delete(ctx, s.ID)))
	_, err := store.Get(ctx, s.ID)
	assert.True(t, mnerrors.IsNotFound(err))
}

func TestMemoryStore_InvalidID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	_, err := store.Get(ctx, "nope")
	assert.True(t, mnerrors.IsValidation(err))
	assert.True(t, mnerrors.IsValidation(store.Save(ctx, &Session{ID: contentid.New(contentid.KindSegments)})))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	s := New(sampleRecord(), "")
	require.NoError(t, store.Save(ctx, s))

	updated, err := Update(ctx, store, s.ID, func(r *minutes.Record) error {
		return r.Set("metadata.title", "Cultural Fest")
	})
	require.NoError(t, err)
	assert.Equal(t, "Cultural Fest", updated.Record.Metadata.Title)
	assert.False(t, updated.UpdatedAt.Before(s.UpdatedAt))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cultural Fest", got.Record.Metadata.Title)

	boom := errors.New("boom")
	_, err = Update(ctx, store, s.ID, func(r *minutes.Record) error {
		r.Metadata.Title = "half applied"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	got, err = store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cultural Fest", got.Record.Metadata.Title)
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not-a-url", 0)
	assert.ErrorContains(t, err, "parsing redis url")
}

func TestRedisStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	store := NewRedisStore(client, 0)
	defer store.Close()

	_, err := store.Get(context.Background(), New(nil, "").ID)
	require.Error(t, err)
	assert.False(t, mnerrors.IsNotFound(err))
	assert.Equal(t, DefaultTTL, store.ttl)
}

func TestRedisStore_Integration(t *testing.T) {
	url := os.Getenv("MINUTES_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MINUTES_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	store, err := DialRedis(ctx, url, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	s := New(sampleRecord(), "meeting.txt")
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Record, got.Record)
	assert.Equal(t, "meeting.txt", got.Source)

	ttl, err := store.client.TTL(ctx, sessionKey(s.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.True(t, mnerrors.IsNotFound(err))
}
