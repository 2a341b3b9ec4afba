package upload

import "time"

// Upload is a hosted image. Other domains store only its URL.
type Upload struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	UserID       int64     `gorm:"column:user_id;index" json:"user_id"`
	OriginalName string    `gorm:"column:original_name" json:"name"`
	Provider     string    `gorm:"column:provider" json:"provider"`
	StorageKey   string    `gorm:"column:storage_key" json:"-"` // disk path or cloudinary public id
	FileURL      string    `gorm:"column:file_url" json:"url"`
	Folder       string    `gorm:"column:folder" json:"folder"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	Size         int64     `gorm:"column:size" json:"size"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }
