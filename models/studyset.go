package models

import "gorm.io/datatypes"

type StudySet struct {
	Base
	UserID       uint    `gorm:"not null;index" json:"user_id"`
	Title        string  `gorm:"not null" json:"title"`
	Description  string  `gorm:"type:text" json:"description"`
	SourceFileID *uint   `gorm:"index" json:"source_file_id,omitempty"`

	// 关联关系
	Flashcards    []Flashcard    `gorm:"foreignKey:StudySetID" json:"flashcards,omitempty"`
	QuizQuestions []QuizQuestion `gorm:"foreignKey:StudySetID" json:"quiz_questions,omitempty"`
}

type Flashcard struct {
	Base
	StudySetID uint   `gorm:"not null;index" json:"study_set_id"`
	Question   string `gorm:"type:text;not null" json:"question"`
	Answer     string `gorm:"type:text;not null" json:"answer"`
	Order      int    `gorm:"column:display_order;not null;default:0" json:"order"`
}

type QuizQuestion struct {
	Base
	StudySetID    uint           `gorm:"not null;index" json:"study_set_id"`
	Question      string         `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSON `gorm:"type:jsonb" json:"options"` // JSON 数组存储选项
	CorrectAnswer int            `gorm:"not null" json:"correct_answer"`
	Order         int            `gorm:"column:display_order;not null;default:0" json:"order"`
}

func (StudySet) TableName() string {
	return "study_sets"
}

func (Flashcard) TableName() string {
	return "flashcards"
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
