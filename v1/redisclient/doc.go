// Package redisclient adapts a Redis connection to the redlock.ServerClient
// contract, evaluating redlock's Lua scripts with redis.Script.Run exactly
// as the go-redis ecosystem expects.
package redisclient
