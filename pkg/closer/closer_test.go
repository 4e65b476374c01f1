package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseRunsInReverseOrder(t *testing.T) {
	c := NewCloser(time.Second)

	var order []string
	for _, name := range []string{"db", "cache", "server"} {
		c.AddFunc(name, func() error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"server", "cache", "db"}, order)
}

func TestCloseJoinsErrors(t *testing.T) {
	c := NewCloser(time.Second)
	errDB := errors.New("db gone")

	c.AddFunc("db", func() error { return errDB })
	c.AddFunc("ok", func() error { return nil })

	err := c.Close(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "db")
}

func TestCloseOnlyOnce(t *testing.T) {
	c := NewCloser(time.Second)
	calls := 0
	c.AddFunc("x", func() error {
		calls++
		return nil
	})

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloseForcesRemainingOnTimeout(t *testing.T) {
	c := NewCloser(50 * time.Millisecond)

	var (
		mu     sync.Mutex
		forced bool
	)
	c.AddFunc("first", func() error {
		mu.Lock()
		forced = true
		mu.Unlock()
		return nil
	})
	c.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")
	mu.Lock()
	assert.True(t, forced)
	mu.Unlock()
}
