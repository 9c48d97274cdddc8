package models

import "time"

// Post publication states.
const (
	PostDraft     = "draft"
	PostPublished = "published"
	PostArchived  = "archived"
)

// Post is a blog article. Category, tag and author information is
// denormalized at write time so listings never need joins.
type Post struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Slug        string       `json:"slug"`
	Content     string       `json:"content"`
	Excerpt     string       `json:"excerpt"`
	CoverImage  string       `json:"coverImage,omitempty"`
	Category    CategoryInfo `json:"category"`
	Tags        []TagInfo    `json:"tags"`
	Author      AuthorInfo   `json:"author"`
	Status      string       `json:"status"`
	Featured    bool         `json:"featured"`
	SEO         SEOInfo      `json:"seo"`
	Views       int          `json:"views"`
	Likes       int          `json:"likes"`
	PublishedAt *time.Time   `json:"publishedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CategoryInfo is the category stamp embedded in a post.
type CategoryInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TagInfo is the tag stamp embedded in a post.
type TagInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SEOInfo carries per-post metadata for search engines.
type SEOInfo struct {
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}
