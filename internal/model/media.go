package model

import "time"

// Media describes an uploaded object (avatar or product image) after it has
// been stored. URL is a presigned link and expires; Key is the stable handle.
type Media struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
