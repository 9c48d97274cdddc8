package utils

import (
	"regexp"
	"strings"
)

var (
	// Keep lowercase ASCII letters, digits, Hangul syllables, whitespace and
	// hyphens; everything else is stripped.
	slugStrip      = regexp.MustCompile(`[^a-z0-9가-힣\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)

// Slugify converts a display name or title into a kebab-case slug. Shared by
// categories, tags, posts, folders and notes so that wiki-link resolution
// and slug generation always agree.
//
// Returns "" for input with no usable characters; callers must treat an
// empty slug as invalid.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
