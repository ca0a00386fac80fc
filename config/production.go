package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"catalogcrawl/oops"
)

func productionConfig() (Config, error) {
	cfg := developmentConfig()
	cfg.Env = EnvProduction
	cfg.Log.Console = false

	var errs []error
	lookup := func(key string) string {
		value, ok := os.LookupEnv(key)
		if !ok {
			errs = append(errs, fmt.Errorf("%s environment variable not set", key))
		}
		return value
	}

	cfg.Store.Location = lookup("CATALOGCRAWL_STORE")
	if value, ok := os.LookupEnv("CATALOGCRAWL_RUN_DB"); ok {
		cfg.RunDb.Path = value
	}
	if value, ok := os.LookupEnv("CATALOGCRAWL_MAX_PAGES"); ok {
		maxPages, err := strconv.Atoi(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("CATALOGCRAWL_MAX_PAGES: %w", err))
		}
		cfg.Catalog.MaxPages = maxPages
	}
	if bucket, ok := os.LookupEnv("CATALOGCRAWL_MIRROR_BUCKET"); ok {
		cfg.Mirror.Bucket = bucket
		cfg.Mirror.Key = lookup("CATALOGCRAWL_MIRROR_KEY")
		cfg.Mirror.AwsAccessKey = lookup("AWS_ACCESS_KEY_ID")
		cfg.Mirror.AwsSecretAccessKey = lookup("AWS_SECRET_ACCESS_KEY")
	}
	if len(errs) > 0 {
		return Config{}, oops.Wrap(errors.Join(errs...))
	}
	return cfg, nil
}
