package models

import "time"

// Media is an uploaded file stored on local disk and served under /uploads.
type Media struct {
	ID               string     `json:"id"`
	OriginalFilename string     `json:"originalFilename"`
	SavedFilename    string     `json:"savedFilename"`
	FilePath         string     `json:"-"`
	FileURL          string     `json:"fileUrl"`
	ContentType      string     `json:"contentType"`
	FileSize         int64      `json:"fileSize"`
	Uploader         AuthorInfo `json:"uploader"`
	CreatedAt        time.Time  `json:"createdAt"`
}
