package clients

import (
	"net/url"
	"strings"
)

type Platform string

const (
	PlatformCodeforces Platform = "codeforces"
	PlatformLeetCode   Platform = "leetcode"
)

// ExtractUsername pulls a handle out of a profile field that may be either
// a bare handle or a profile URL.
//
// LeetCode URLs use the segment after /u/ when present, otherwise the last
// path segment. Codeforces URLs must carry /profile/<handle>; anything else
// yields no handle — there is no last-segment fallback for Codeforces.
func ExtractUsername(raw string, platform Platform) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// No path separator at all: treat as a bare handle.
	if !strings.Contains(raw, "/") {
		return raw
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	segments := splitPath(u.Path)
	if len(segments) == 0 {
		return ""
	}

	switch platform {
	case PlatformCodeforces:
		for i, seg := range segments {
			if seg == "profile" && i+1 < len(segments) {
				return segments[i+1]
			}
		}
		return ""
	case PlatformLeetCode:
		for i, seg := range segments {
			if seg == "u" && i+1 < len(segments) {
				return segments[i+1]
			}
		}
		return segments[len(segments)-1]
	default:
		return ""
	}
}

func splitPath(p string) []string {
	var segments []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
