package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractUsername_Codeforces(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare handle", "tourist", "tourist"},
		{"profile url", "https://codeforces.com/profile/tourist", "tourist"},
		{"profile url no scheme", "codeforces.com/profile/tourist", "tourist"},
		{"trailing slash", "https://codeforces.com/profile/tourist/", "tourist"},
		{"no profile segment", "https://codeforces.com/tourist", ""},
		{"contest url", "https://codeforces.com/contest/1234/standings", ""},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractUsername(tt.raw, PlatformCodeforces))
		})
	}
}

func TestExtractUsername_LeetCode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare handle", "neal_wu", "neal_wu"},
		{"u-path url", "https://leetcode.com/u/neal_wu/", "neal_wu"},
		{"legacy profile url", "https://leetcode.com/neal_wu", "neal_wu"},
		{"no scheme", "leetcode.com/u/neal_wu", "neal_wu"},
		{"last segment fallback", "https://leetcode.com/some/deep/handle", "handle"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractUsername(tt.raw, PlatformLeetCode))
		})
	}
}
