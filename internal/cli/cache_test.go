package cli

import (
	"testing"

	"github.com/matzehuels/archview/internal/config"
)

func TestCacheLocation(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	tests := []struct {
		name string
		cc   config.CacheConfig
		want string
	}{
		{"file default", config.CacheConfig{Backend: config.BackendFile}, "/tmp/xdg-cache/archview"},
		{"file dir", config.CacheConfig{Backend: config.BackendFile, Dir: "/srv/cache"}, "/srv/cache"},
		{"none", config.CacheConfig{Backend: config.BackendNone}, "none"},
		{"redis", config.CacheConfig{Backend: config.BackendRedis, RedisAddr: "localhost:6379", RedisPrefix: "archview:"}, "redis://localhost:6379/archview:"},
		{"mongo", config.CacheConfig{Backend: config.BackendMongo, MongoURI: "mongodb://db", MongoDatabase: "archview", MongoCollection: "cache"}, "mongodb://db archview.cache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cacheLocation(tt.cc); got != tt.want {
				t.Errorf("cacheLocation() = %q, want %q", got, tt.want)
			}
		})
	}
}
