package service

import (
	"reflect"
	"testing"
)

func TestExtractWikiLinks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "plain text without references", []string{}},
		{"single", "see [[Note A]] for details", []string{"Note A"}},
		{"order preserved", "[[B]] then [[A]] then [[C]]", []string{"B", "A", "C"}},
		{"duplicates kept", "See [[Note A]] and [[Note A]] again", []string{"Note A", "Note A"}},
		{"whitespace trimmed", "[[  padded ref  ]]", []string{"padded ref"}},
		{"bracket inside breaks the span", "[[a]b]] and [[ok]]", []string{"ok"}},
		{"unterminated ignored", "[[never closed", []string{}},
		{"hangul", "링크 [[개발 노트]] 참고", []string{"개발 노트"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractWikiLinks(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractWikiLinks(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestWikiLinkSlugs(t *testing.T) {
	got := WikiLinkSlugs("intro [[Note A]] body [[Hello, World!]] end")
	want := []string{"note-a", "hello-world"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WikiLinkSlugs = %v, want %v", got, want)
	}
}
