//go:build !testing

package config

const isTesting = false

func testingConfig() Config {
	panic("testing config requested outside of the testing build")
}
