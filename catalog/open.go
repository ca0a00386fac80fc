package catalog

import (
	"context"
	"strings"

	"catalogcrawl/config"
	"catalogcrawl/log"
)

// OpenStore picks the store from the location: postgres URLs, .json files, anything else is csv.
// The returned release func is always non-nil.
func OpenStore(ctx context.Context, cfg config.Config, logger log.Logger) (Store, func(), error) {
	location := cfg.Store.Location
	release := func() {}

	var store Store
	switch {
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		pgStore, err := NewPgStore(ctx, location)
		if err != nil {
			return nil, release, err
		}
		store = pgStore
		release = pgStore.Close
	case strings.HasSuffix(strings.ToLower(location), ".json"):
		store = NewJsonStore(location)
	default:
		store = NewCsvStore(location)
	}

	if cfg.Mirror.Enabled() {
		client, err := NewS3Client(ctx, cfg.Mirror)
		if err != nil {
			release()
			return nil, func() {}, err
		}
		store = &S3MirrorStore{
			Inner:  store,
			Client: client,
			Bucket: cfg.Mirror.Bucket,
			Key:    cfg.Mirror.Key,
			Logger: logger,
		}
	}
	return store, release, nil
}
