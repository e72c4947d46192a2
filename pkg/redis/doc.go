// Package redis connects the licensing services to Redis.
//
// It wraps the go-redis client with a retrying Connect, env-based Config and
// a health-check helper for readiness probes. The registry cache in
// pkg/lookup takes the client this package produces:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil { ... }
//	defer client.Close()
//
//	cached, err := lookup.NewCached(store, client, cacheCfg)
package redis
