package infra

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.Equal(t, "v", must(mr.Get("k")))
}

func TestConstructorsRejectEmptyURL(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedisClient(ctx, "")
	assert.Error(t, err)

	_, err = NewPostgresPool(ctx, "")
	assert.Error(t, err)

	_, err = NewMongoClient(ctx, "")
	assert.Error(t, err)
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "://nope")
	assert.Error(t, err)
}

func must(v string, err error) string {
	if err != nil {
		panic(err)
	}
	return v
}
