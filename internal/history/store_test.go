package history

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	loads   int
	appends int
}

func (f *failingStore) Load(context.Context, string) ([]Record, error) {
	f.loads++
	return nil, errors.New("table unavailable")
}

func (f *failingStore) Append(context.Context, Record) error {
	f.appends++
	return errors.New("table unavailable")
}

func (f *failingStore) Close() error { return nil }

func TestRecorderSwallowsFailures(t *testing.T) {
	store := &failingStore{}
	rec := NewRecorder(store)

	assert.Empty(t, rec.Load(context.Background(), "room"))
	rec.Save(context.Background(), "room", UserTurn("hi", IntentGreetings))

	assert.Equal(t, 1, store.loads)
	assert.Equal(t, 1, store.appends)
}

func TestRecorderRoundTrip(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(NewMemoryStore(time.Hour))

	rec.Save(ctx, "room", UserTurn("does sparkout have an office in chennai?", IntentRAG))
	rec.Save(ctx, "room", AssistantTurn("Yes, we do."))
	rec.Save(ctx, "other", UserTurn("hi", IntentGreetings))

	turns := rec.Load(ctx, "room")
	require.Len(t, turns, 2)
	assert.Equal(t, IntentRAG, turns[0].Intent)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, "Yes, we do.", turns[1].Content)
}

func TestRecorderSkipsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	require.NoError(t, store.Append(ctx, Record{SessionID: "room", Role: "system", Content: "x"}))
	require.NoError(t, store.Append(ctx, Record{SessionID: "room", Role: RoleUser, Content: "hi"}))

	turns := NewRecorder(store).Load(ctx, "room")
	require.Len(t, turns, 1)
	assert.Equal(t, "hi", turns[0].Content)
}

func TestMemoryStoreUnknownSession(t *testing.T) {
	recs, err := NewMemoryStore(0).Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	now := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, Record{ID: "1", SessionID: "room", Role: RoleUser, Content: "hi", Intent: IntentGreetings, Timestamp: now}))
	require.NoError(t, store.Append(ctx, Record{ID: "2", SessionID: "room", Role: RoleAssistant, Content: "hello", Timestamp: now.Add(time.Second)}))

	recs, err := store.Load(ctx, "room")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1", recs[0].ID)
	assert.Equal(t, IntentGreetings, recs[0].Intent)
	assert.Equal(t, "hello", recs[1].Content)
	assert.True(t, recs[1].Timestamp.Equal(now.Add(time.Second)))

	assert.Equal(t, time.Hour, mr.TTL(defaultRedisPrefix+"room"))
}

func TestRedisStoreCorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	_, err := mr.Push(defaultRedisPrefix+"room", "{not json")
	require.NoError(t, err)

	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	_, err = store.Load(context.Background(), "room")
	assert.Error(t, err)
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore("://nope", time.Hour)
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("VOXROUTE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VOXROUTE_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, dsn, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	session := "test-" + time.Now().Format("150405.000000")
	rec := NewRecorder(store)
	rec.Save(ctx, session, UserTurn("where exactly?", IntentRAG))
	rec.Save(ctx, session, AssistantTurn("In Chennai."))

	turns := rec.Load(ctx, session)
	require.Len(t, turns, 2)
	assert.Equal(t, IntentRAG, turns[0].Intent)
	assert.Equal(t, "In Chennai.", turns[1].Content)
}
