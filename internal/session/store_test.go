package session

import (
	"context"
	"testing"
	"time"

	"github.com/lemonhouse/storefront/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.ErrNil
	}
	return v, nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeKV) SessionUserKey(id string) string {
	return "lemon:session:user:" + id
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	kv := &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
	store, err := NewRedisStore(kv, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Save(ctx, "s1", asha))
	assert.Equal(t, time.Hour, kv.ttls["lemon:session:user:s1"])
	assert.JSONEq(t, `{"name":"Asha","phone":"9876543210","address":"12 MG Road","pincode":"560001"}`, kv.values["lemon:session:user:s1"])

	raw, found, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, string(raw), "9876543210")

	require.NoError(t, store.Clear(ctx, "s1"))
	_, found, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisStoreRequiresKV(t *testing.T) {
	t.Parallel()

	_, err := NewRedisStore(nil, time.Hour)
	assert.Error(t, err)
}
