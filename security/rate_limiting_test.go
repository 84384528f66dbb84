package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuspiciousUserAgent(t *testing.T) {
	limiter := NewRateLimiter(nil)

	suspicious := []string{
		"",
		"curl/8.0.1",
		"Wget/1.21",
		"python-requests/2.31",
		"Googlebot/2.1",
		"my-crawler/1.0",
		"WebScraper 2.0",
	}
	for _, ua := range suspicious {
		assert.True(t, limiter.isSuspiciousUserAgent(ua), "expected %q to be flagged", ua)
	}

	legitimate := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
	}
	for _, ua := range legitimate {
		assert.False(t, limiter.isSuspiciousUserAgent(ua), "expected %q to pass", ua)
	}
}
