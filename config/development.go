package config

import (
	"os"
	"time"
)

func developmentConfig() Config {
	return Config{
		Env: EnvDevelopment,
		Catalog: CatalogConfig{
			BaseUrl:    "https://www.shl.com/solutions/products/product-catalog/",
			Origin:     "https://www.shl.com",
			PageSize:   12,
			StartParam: "start",
			MaxPages:   0,
		},
		Crawl: CrawlConfig{
			Attempts:             3,
			RetryBackoff:         2 * time.Second,
			SettleDelay:          2 * time.Second,
			InterstitialDelay:    2 * time.Second,
			WaitTimeout:          20 * time.Second,
			NavigationTimeout:    30 * time.Second,
			DismissInterstitials: true,
			FailOnTruncation:     true,
		},
		Browser: BrowserConfig{
			Bin:       os.Getenv("CATALOGCRAWL_BROWSER_BIN"),
			Headless:  true,
			NoSandbox: true,
		},
		Store: StoreConfig{
			Location: "data/catalog.csv",
		},
		Mirror: MirrorConfig{
			Bucket:             "",
			Key:                "",
			Region:             "us-west-2",
			AwsAccessKey:       os.Getenv("AWS_ACCESS_KEY_ID"),
			AwsSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		RunDb: RunDbConfig{
			Path: "data/runs.db",
		},
		Log: LogConfig{
			Level:   "info",
			File:    "scraping.log",
			Console: true,
		},
		Selectors: DefaultSelectors(),
	}
}
