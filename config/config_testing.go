//go:build testing

package config

const isTesting = true

func testingConfig() Config {
	devCfg := developmentConfig()
	return Config{
		Env:     EnvTesting,
		Catalog: devCfg.Catalog,
		Crawl: CrawlConfig{
			Attempts:             devCfg.Crawl.Attempts,
			RetryBackoff:         0,
			SettleDelay:          0,
			InterstitialDelay:    0,
			WaitTimeout:          devCfg.Crawl.WaitTimeout,
			NavigationTimeout:    devCfg.Crawl.NavigationTimeout,
			DismissInterstitials: devCfg.Crawl.DismissInterstitials,
			FailOnTruncation:     devCfg.Crawl.FailOnTruncation,
		},
		Browser:   devCfg.Browser,
		Store:     StoreConfig{Location: "catalog_test.csv"},
		Mirror:    MirrorConfig{Bucket: "", Key: "", Region: "", AwsAccessKey: "", AwsSecretAccessKey: ""},
		RunDb:     RunDbConfig{Path: ""},
		Log:       LogConfig{Level: "debug", File: "", Console: false},
		Selectors: devCfg.Selectors,
	}
}
