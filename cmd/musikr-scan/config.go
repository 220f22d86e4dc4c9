package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/simonhull/musikr"
	"github.com/simonhull/musikr/internal/graph"
	"github.com/simonhull/musikr/internal/logger"
)

// config is read from the environment, optionally seeded from a .env file.
type config struct {
	Locations          []string
	CacheDB            string
	CoversDir          string
	PlaylistDB         string
	Separators         string
	IntelligentSorting bool
	CoverQuality       int
	LogLevel           logger.Level
	MBIDPolicy         musikr.MBIDPolicy
}

var errNoLocations = errors.New("MUSIKR_LOCATIONS is empty")

// loadEnv reads .env from the working directory if there is one. It
// reports whether a file was loaded.
func loadEnv() bool {
	return godotenv.Load() == nil
}

func loadConfig() (config, error) {
	cfg := config{
		Locations:          splitList(getEnvString("MUSIKR_LOCATIONS", "")),
		CacheDB:            getEnvString("MUSIKR_CACHE_DB", ""),
		CoversDir:          getEnvString("MUSIKR_COVERS_DIR", defaultCoversDir()),
		PlaylistDB:         getEnvString("MUSIKR_PLAYLIST_DB", ""),
		Separators:         getEnvString("MUSIKR_SEPARATORS", ""),
		IntelligentSorting: getEnvBool("MUSIKR_INTELLIGENT_SORTING", true),
		CoverQuality:       getEnvInt("MUSIKR_COVER_QUALITY", 0),
		LogLevel:           logger.ParseLevel(getEnvString("MUSIKR_LOG_LEVEL", "info")),
	}
	policy, err := graph.ParseMBIDPolicy(getEnvString("MUSIKR_MBID_POLICY", ""))
	if err != nil {
		return config{}, err
	}
	cfg.MBIDPolicy = policy
	if len(cfg.Locations) == 0 {
		return config{}, errNoLocations
	}
	return cfg, nil
}

func defaultCoversDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "musikr", "covers")
}

// splitList splits on the OS path list separator, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range filepath.SplitList(s) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvString(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if value == "true" || value == "false" {
		return value == "true"
	}
	return defaultValue
}
