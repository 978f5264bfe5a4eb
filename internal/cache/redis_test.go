package cache

import (
	"testing"
	"time"
)

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "feed",
			expected: "dresss:feed",
		},
		{
			name:     "key with colon",
			key:      "feed:anonymous",
			expected: "dresss:feed:anonymous",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "dresss:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cache.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache

	if _, err := c.Get("k"); err != ErrCacheDisabled {
		t.Errorf("Get on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Set("k", "v", time.Minute); err != ErrCacheDisabled {
		t.Errorf("Set on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.GetJSON("k", &struct{}{}); err != ErrCacheDisabled {
		t.Errorf("GetJSON on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Delete("k"); err != ErrCacheDisabled {
		t.Errorf("Delete on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil cache = %v, want nil", err)
	}
}
