// Command redlock-demo wires a redlock.Manager over a comma-separated list
// of Redis addresses and exercises a single acquire/extend/release cycle.
// It is a smoke-test CLI, external to the redlock core per the library's
// own scope.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/mirkobrombin/redlock/v1/redisclient"
	"github.com/mirkobrombin/redlock/v1/redlock"
)

var (
	addrs  = flag.String("addrs", "localhost:6379", "comma-separated list of Redis addresses, one per quorum participant")
	key    = flag.String("key", "redlock-demo", "resource key to lock")
	ttl    = flag.Duration("ttl", 5*time.Second, "lock TTL")
	extend = flag.Duration("extend", 3*time.Second, "new TTL to set on the lock, from the time of the extend, before releasing")
)

func main() {
	flag.Parse()

	var clients []redlock.ServerClient
	for _, addr := range strings.Split(*addrs, ",") {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		clients = append(clients, redisclient.New(rdb))
	}

	mgr, err := redlock.New(clients)
	if err != nil {
		log.Fatalf("redlock: %v", err)
	}
	defer mgr.Close(context.Background())

	go func() {
		for err := range mgr.ClientErrors() {
			log.Printf("redlock: server client error: %v", err)
		}
	}()

	ctx := context.Background()
	resource := redlock.Key(*key)

	lock, err := mgr.Acquire(ctx, resource, *ttl)
	if err != nil {
		log.Fatalf("acquire %q: %v", *key, err)
	}
	log.Printf("acquired %q, expires %s, attempts %d", *key, lock.Expiration(), lock.Attempts())

	if _, err := lock.Extend(ctx, *extend); err != nil {
		log.Fatalf("extend %q: %v", *key, err)
	}
	log.Printf("extended %q, expires %s, attempts %d", *key, lock.Expiration(), lock.Attempts())

	if err := lock.Unlock(ctx); err != nil {
		log.Fatalf("release %q: %v", *key, err)
	}
	log.Printf("released %q", *key)
}
