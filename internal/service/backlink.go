package service

import (
	"regexp"
	"strings"

	"inkwell/internal/utils"
)

// wikiLinkPattern matches [[reference]] spans: anything between double
// brackets that contains no closing bracket.
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// ExtractWikiLinks returns the bracketed reference texts in order of
// appearance, trimmed of surrounding whitespace. Duplicates are preserved;
// resolution and dropping of dangling references happen at the caller.
func ExtractWikiLinks(content string) []string {
	matches := wikiLinkPattern.FindAllStringSubmatch(content, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, strings.TrimSpace(m[1]))
	}
	return links
}

// WikiLinkSlugs converts extracted references into lookup slugs using the
// same algorithm that assigned the target notes their slugs.
func WikiLinkSlugs(content string) []string {
	refs := ExtractWikiLinks(content)
	slugs := make([]string, 0, len(refs))
	for _, ref := range refs {
		slugs = append(slugs, utils.Slugify(ref))
	}
	return slugs
}
