package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RigelNana/studygen/models"
)

type PostgresStorage struct {
	db *gorm.DB
}

func NewPostgresStorage(db *gorm.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *PostgresStorage) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *PostgresStorage) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *PostgresStorage) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *PostgresStorage) CreateUploadedFile(file *models.UploadedFile) error {
	return s.db.Create(file).Error
}

func (s *PostgresStorage) GetUploadedFile(id, userID uint) (*models.UploadedFile, error) {
	var file models.UploadedFile
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&file).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &file, nil
}

func (s *PostgresStorage) ListUploadedFiles(userID uint) ([]*models.UploadedFile, error) {
	var files []*models.UploadedFile
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (s *PostgresStorage) FinishExtraction(id uint, status string, extractedText *string) error {
	res := s.db.Model(&models.UploadedFile{}).
		Where("id = ? AND status = ?", id, models.FileStatusProcessing).
		Updates(map[string]interface{}{
			"status":         status,
			"extracted_text": extractedText,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) LinkStudySet(fileID, studySetID uint) error {
	res := s.db.Model(&models.UploadedFile{}).
		Where("id = ?", fileID).
		Update("study_set_id", studySetID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) DeleteUploadedFile(id, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var file models.UploadedFile
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&file).Error; err != nil {
			return wrapNotFound(err)
		}
		if file.StudySetID != nil {
			if err := deleteStudySetTx(tx, *file.StudySetID, userID); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}
		return tx.Delete(&models.UploadedFile{}, "id = ?", id).Error
	})
}

func (s *PostgresStorage) CreateStudySet(set *models.StudySet) error {
	return s.db.Create(set).Error
}

func (s *PostgresStorage) GetStudySet(id, userID uint) (*models.StudySet, error) {
	var set models.StudySet
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&set).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &set, nil
}

func (s *PostgresStorage) ListStudySets(userID uint) ([]*models.StudySet, error) {
	var sets []*models.StudySet
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&sets).Error
	if err != nil {
		return nil, err
	}
	return sets, nil
}

func (s *PostgresStorage) UpdateStudySet(set *models.StudySet) error {
	return s.db.Save(set).Error
}

func (s *PostgresStorage) DeleteStudySet(id, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteStudySetTx(tx, id, userID)
	})
}

// deleteStudySetTx 在事务内删除学习集及其全部闪卡和测验题
func deleteStudySetTx(tx *gorm.DB, id, userID uint) error {
	var set models.StudySet
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&set).Error; err != nil {
		return wrapNotFound(err)
	}
	if err := tx.Delete(&models.Flashcard{}, "study_set_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.QuizQuestion{}, "study_set_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Delete(&models.StudySet{}, "id = ?", id).Error
}

func (s *PostgresStorage) CreateFlashcard(card *models.Flashcard) error {
	return s.db.Create(card).Error
}

func (s *PostgresStorage) ListFlashcards(studySetID uint) ([]*models.Flashcard, error) {
	var cards []*models.Flashcard
	err := s.db.Where("study_set_id = ?", studySetID).
		Order("display_order ASC, id ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *PostgresStorage) CreateQuizQuestion(question *models.QuizQuestion) error {
	return s.db.Create(question).Error
}

func (s *PostgresStorage) ListQuizQuestions(studySetID uint) ([]*models.QuizQuestion, error) {
	var questions []*models.QuizQuestion
	err := s.db.Where("study_set_id = ?", studySetID).
		Order("display_order ASC, id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}
