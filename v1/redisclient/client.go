package redisclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/mirkobrombin/redlock/v1/redlock"
)

// Client adapts a *redis.Client to redlock.ServerClient. Each Client is
// tagged with a random id so per-server errors surfaced on a Manager's
// client-error sink can be attributed to a specific quorum participant.
type Client struct {
	id  string
	rdb *redis.Client

	mu      sync.Mutex
	scripts map[redlock.Script]*redis.Script
}

// New wraps an existing Redis connection.
func New(rdb *redis.Client) *Client {
	return &Client{
		id:      uuid.NewString(),
		rdb:     rdb,
		scripts: make(map[redlock.Script]*redis.Script),
	}
}

// ID returns this client's identity tag.
func (c *Client) ID() string { return c.id }

// compiled returns a cached *redis.Script for body, compiling it on first
// use. redlock invokes the same handful of script bodies repeatedly, so the
// cache avoids re-hashing the Lua source on every Eval call.
func (c *Client) compiled(body redlock.Script) *redis.Script {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.scripts[body]; ok {
		return s
	}
	s := redis.NewScript(string(body))
	c.scripts[body] = s
	return s
}

// Eval implements redlock.ServerClient by running script through EVALSHA
// (falling back to EVAL on a cache miss), exactly as redis.Script.Run does
// for the teacher's own single-key delScript.
func (c *Client) Eval(ctx context.Context, script redlock.Script, keys []string, args []any) (int64, error) {
	res, err := c.compiled(script).Run(ctx, c.rdb, keys, args...).Result()
	if err != nil {
		return 0, fmt.Errorf("redisclient[%s]: %w", c.id, err)
	}
	n, ok := res.(int64)
	if !ok {
		return 0, fmt.Errorf("redisclient[%s]: unexpected script reply type %T", c.id, res)
	}
	return n, nil
}

// Close disconnects the underlying Redis client.
func (c *Client) Close(ctx context.Context) error {
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redisclient[%s]: %w", c.id, err)
	}
	return nil
}
