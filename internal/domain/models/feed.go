package models

import "time"

// Feed visibility.
const (
	FeedPublic  = "public"
	FeedPrivate = "private"
)

// Feed is a short social post with optional images and a scraped link
// preview.
type Feed struct {
	ID            string       `json:"id"`
	Content       string       `json:"content"`
	Images        []string     `json:"images"`
	Author        AuthorInfo   `json:"author"`
	Visibility    string       `json:"visibility"`
	LinkPreview   *LinkPreview `json:"linkPreview,omitempty"`
	LikesCount    int          `json:"likesCount"`
	LikedBy       []string     `json:"likedBy"`
	CommentsCount int          `json:"commentsCount"`
	Views         int          `json:"views"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// LinkPreview is Open Graph metadata scraped from a shared URL.
type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

// FeedComment is a flat comment on a feed.
type FeedComment struct {
	ID        string     `json:"id"`
	FeedID    string     `json:"feedId"`
	Author    AuthorInfo `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
}
