// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultAddr      = ":8080"
	defaultAlgorithm = "huffman"
	defaultCacheSize = 128
	defaultMaxBody   = 32 << 20 // 32 MiB
)

type Config struct {
	Addr      string // HUFFPACK_ADDR
	Algorithm string // HUFFPACK_ALGORITHM
	CacheSize int    // HUFFPACK_CACHE_SIZE, decoded Huffman tables kept
	MaxBody   int64  // HUFFPACK_MAX_BODY, request body limit in bytes
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		Addr:      defaultAddr,
		Algorithm: defaultAlgorithm,
		CacheSize: defaultCacheSize,
		MaxBody:   defaultMaxBody,
	}
	if v, ok := lookup("HUFFPACK_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("HUFFPACK_ALGORITHM"); ok && v != "" {
		cfg.Algorithm = v
	}
	if v, ok := lookup("HUFFPACK_CACHE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("HUFFPACK_CACHE_SIZE: invalid value %q", v)
		}
		cfg.CacheSize = n
	}
	if v, ok := lookup("HUFFPACK_MAX_BODY"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("HUFFPACK_MAX_BODY: invalid value %q", v)
		}
		cfg.MaxBody = n
	}
	return cfg, nil
}
