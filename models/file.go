package models

type UploadedFile struct {
	Base
	UserID        uint    `gorm:"not null;index" json:"user_id"`
	Filename      string  `gorm:"not null" json:"filename"` // 磁盘上的临时文件名
	OriginalName  string  `gorm:"not null" json:"original_name"`
	MimeType      string  `gorm:"not null" json:"mime_type"`
	Status        string  `gorm:"not null;index;default:'pending'" json:"status"`
	ExtractedText *string `gorm:"type:text" json:"extracted_text,omitempty"`
	StudySetID    *uint   `gorm:"index" json:"study_set_id,omitempty"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}

// 文件状态常量：processing 之后只允许迁移到 completed 或 error 一次
const (
	FileStatusPending    = "pending"
	FileStatusProcessing = "processing"
	FileStatusCompleted  = "completed"
	FileStatusError      = "error"
)

// IsTerminal 判断状态是否为终态
func IsTerminal(status string) bool {
	return status == FileStatusCompleted || status == FileStatusError
}
