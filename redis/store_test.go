package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/meikuraledutech/automata"
	"github.com/meikuraledutech/automata/redis"
	"github.com/meikuraledutech/automata/storetest"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	storetest.RunStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("game1:"))
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, "slot/quest", storetest.SampleDocument(t)))
	assert.True(t, mr.Exists("game1:doc:slot/quest"))
	members, err := mr.Members("game1:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"slot/quest"}, members)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, "slot/quest", storetest.SampleDocument(t)))
	keys, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"slot/quest"}, keys)

	mr.FastForward(2 * time.Second)

	_, err = store.GetDocument(ctx, "slot/quest")
	assert.ErrorIs(t, err, automata.ErrDocumentNotFound)

	keys, err = store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	members, err := mr.Members("automata:index")
	require.NoError(t, err)
	assert.Empty(t, members, "expired entries are pruned from the index")
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	require.NoError(t, mr.Set("automata:doc:bad", `{"Nodes":[]}`))

	_, err := store.GetDocument(context.Background(), "bad")
	assert.ErrorIs(t, err, automata.ErrInvalidDocument)

	require.NoError(t, mr.Set("automata:doc:garbage", "not json"))
	_, err = store.GetDocument(context.Background(), "garbage")
	assert.ErrorIs(t, err, automata.ErrInvalidDocument)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := redis.NewFromClient(client)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
