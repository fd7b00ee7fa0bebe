package repository

import (
	"errors"

	"github.com/RigelNana/studygen/models"
)

var ErrNotFound = errors.New("record not found")

// Storage 持久层抽象：postgres 与内存两种实现，启动时二选一。
// 所有按 id 的查询都带 userID 做归属校验。
type Storage interface {
	// 用户
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)

	// 上传文件
	CreateUploadedFile(file *models.UploadedFile) error
	GetUploadedFile(id, userID uint) (*models.UploadedFile, error)
	ListUploadedFiles(userID uint) ([]*models.UploadedFile, error)
	// FinishExtraction 把 processing 状态的文件迁移到终态，只允许一次
	FinishExtraction(id uint, status string, extractedText *string) error
	LinkStudySet(fileID, studySetID uint) error
	// DeleteUploadedFile 级联删除关联的学习集及其内容
	DeleteUploadedFile(id, userID uint) error

	// 学习集
	CreateStudySet(set *models.StudySet) error
	GetStudySet(id, userID uint) (*models.StudySet, error)
	ListStudySets(userID uint) ([]*models.StudySet, error)
	UpdateStudySet(set *models.StudySet) error
	// DeleteStudySet 级联删除闪卡与测验题
	DeleteStudySet(id, userID uint) error

	// 闪卡与测验题，按 display_order 再按插入顺序返回
	CreateFlashcard(card *models.Flashcard) error
	ListFlashcards(studySetID uint) ([]*models.Flashcard, error)
	CreateQuizQuestion(question *models.QuizQuestion) error
	ListQuizQuestions(studySetID uint) ([]*models.QuizQuestion, error)
}
