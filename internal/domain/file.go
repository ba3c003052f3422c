package domain

import (
	"strings"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypeMusic    FileType = "MUSIC"
	FileTypeNote     FileType = "NOTE"
	FileTypeImage    FileType = "IMAGE"
	FileTypeVideo    FileType = "VIDEO"
	FileTypeDocument FileType = "DOCUMENT"
)

// FileTypeFromMIME classifies an upload by its MIME type.
func FileTypeFromMIME(mimeType string) FileType {
	switch {
	case strings.HasPrefix(mimeType, "audio/"):
		return FileTypeMusic
	case strings.HasPrefix(mimeType, "image/"):
		return FileTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return FileTypeVideo
	case mimeType == "application/pdf",
		mimeType == "application/msword",
		mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FileTypeNote
	default:
		return FileTypeDocument
	}
}

// Folder is the content store prefix objects of this type are written under.
func (t FileType) Folder() string {
	switch t {
	case FileTypeMusic:
		return "music"
	case FileTypeNote:
		return "notes"
	case FileTypeImage:
		return "images"
	case FileTypeVideo:
		return "videos"
	default:
		return "documents"
	}
}

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeMusic, FileTypeNote, FileTypeImage, FileTypeVideo, FileTypeDocument:
		return true
	}
	return false
}

type File struct {
	BaseModel
	FileName   string    `gorm:"type:varchar(512);not null" json:"fileName"`
	FileType   FileType  `gorm:"type:varchar(20);not null;index:idx_files_group_type,priority:2" json:"fileType"`
	FileURL    string    `gorm:"column:file_url;type:text;not null" json:"fileUrl"`
	FileSize   int64     `gorm:"not null" json:"fileSize"`
	MimeType   string    `gorm:"type:varchar(255);not null" json:"mimeType"`
	MusicTitle *string   `gorm:"type:varchar(512)" json:"musicTitle"`
	MusicURL   *string   `gorm:"column:music_url;type:text" json:"musicUrl"`
	Likes      int       `gorm:"not null;default:0" json:"likes"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_files_user_id" json:"userId"`
	GroupID    uuid.UUID `gorm:"type:uuid;not null;index:idx_files_group_type,priority:1" json:"groupId"`
	User       *Author   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (File) TableName() string {
	return "files"
}
