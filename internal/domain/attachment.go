package domain

import "time"

// Attachment is the metadata row for a blob stored in S3. The blob itself
// lives under Object in the attachments bucket.
type Attachment struct {
	AttachmentID string    `json:"id" dynamodbav:"attachment_id"`
	NoteID       string    `json:"note_id" dynamodbav:"note_id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Size         int64     `json:"size" dynamodbav:"size"`
	ContentType  string    `json:"content_type" dynamodbav:"content_type"`
	Object       string    `json:"-" dynamodbav:"object"`
	Hash         string    `json:"hash" dynamodbav:"hash"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}
