package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/RigelNana/studygen/metrics"
	"github.com/RigelNana/studygen/models"
	"github.com/RigelNana/studygen/repository"
)

// ErrFileNotReady 表示文件还未完成抽取，不能用于生成
var ErrFileNotReady = errors.New("file text not extracted yet")

type StudyService interface {
	// GenerateFromFile 对一个已完成抽取的文件生成闪卡与测验题并持久化为学习集
	GenerateFromFile(ctx context.Context, fileID, userID uint) (*models.StudySet, []*models.Flashcard, []*models.QuizQuestion, error)

	CreateStudySet(set *models.StudySet) error
	GetStudySet(id, userID uint) (*models.StudySet, []*models.Flashcard, []*models.QuizQuestion, error)
	ListStudySets(userID uint) ([]*models.StudySet, error)
	UpdateStudySet(set *models.StudySet) error
	DeleteStudySet(id, userID uint) error

	AddFlashcard(userID uint, card *models.Flashcard) error
	AddQuizQuestion(userID uint, question *models.QuizQuestion) error
}

type StudyServiceImpl struct {
	store     repository.Storage
	generator ContentGenerator
	logger    *logrus.Logger
}

func NewStudyService(store repository.Storage, generator ContentGenerator, logger *logrus.Logger) *StudyServiceImpl {
	return &StudyServiceImpl{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

func (s *StudyServiceImpl) GenerateFromFile(ctx context.Context, fileID, userID uint) (*models.StudySet, []*models.Flashcard, []*models.QuizQuestion, error) {
	file, err := s.store.GetUploadedFile(fileID, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if file.Status != models.FileStatusCompleted || file.ExtractedText == nil {
		return nil, nil, nil, ErrFileNotReady
	}

	cards, questions, err := s.generator.Generate(ctx, *file.ExtractedText)
	if err != nil {
		// 生成失败不落任何数据
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, nil, nil, err
	}
	metrics.GenerationsTotal.WithLabelValues("success").Inc()

	set := &models.StudySet{
		UserID:       userID,
		Title:        file.OriginalName,
		Description:  fmt.Sprintf("Generated from %s", file.OriginalName),
		SourceFileID: &file.ID,
	}
	if err := s.store.CreateStudySet(set); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create study set: %w", err)
	}

	savedCards := make([]*models.Flashcard, 0, len(cards))
	for i, c := range cards {
		card := &models.Flashcard{
			StudySetID: set.ID,
			Question:   c.Question,
			Answer:     c.Answer,
			Order:      i,
		}
		if err := s.store.CreateFlashcard(card); err != nil {
			s.discardStudySet(set.ID, userID)
			return nil, nil, nil, fmt.Errorf("failed to save flashcard: %w", err)
		}
		savedCards = append(savedCards, card)
	}

	savedQuestions := make([]*models.QuizQuestion, 0, len(questions))
	for i, q := range questions {
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			s.discardStudySet(set.ID, userID)
			return nil, nil, nil, fmt.Errorf("failed to encode options: %w", err)
		}
		question := &models.QuizQuestion{
			StudySetID:    set.ID,
			Question:      q.Question,
			Options:       datatypes.JSON(optionsJSON),
			CorrectAnswer: q.CorrectAnswer,
			Order:         i,
		}
		if err := s.store.CreateQuizQuestion(question); err != nil {
			s.discardStudySet(set.ID, userID)
			return nil, nil, nil, fmt.Errorf("failed to save quiz question: %w", err)
		}
		savedQuestions = append(savedQuestions, question)
	}

	if err := s.store.LinkStudySet(file.ID, set.ID); err != nil {
		s.logger.Errorf("failed to link study set %d to file %d: %v", set.ID, file.ID, err)
	}

	s.logger.Infof("generated study set %d from file %d: %d flashcards, %d quiz questions",
		set.ID, file.ID, len(savedCards), len(savedQuestions))

	return set, savedCards, savedQuestions, nil
}

// discardStudySet 回滚生成中途创建的学习集，级联删除已写入的内容
func (s *StudyServiceImpl) discardStudySet(id, userID uint) {
	if err := s.store.DeleteStudySet(id, userID); err != nil {
		s.logger.Errorf("failed to clean up partial study set %d: %v", id, err)
	}
}

func (s *StudyServiceImpl) CreateStudySet(set *models.StudySet) error {
	return s.store.CreateStudySet(set)
}

func (s *StudyServiceImpl) GetStudySet(id, userID uint) (*models.StudySet, []*models.Flashcard, []*models.QuizQuestion, error) {
	set, err := s.store.GetStudySet(id, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	cards, err := s.store.ListFlashcards(set.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	questions, err := s.store.ListQuizQuestions(set.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return set, cards, questions, nil
}

func (s *StudyServiceImpl) ListStudySets(userID uint) ([]*models.StudySet, error) {
	return s.store.ListStudySets(userID)
}

func (s *StudyServiceImpl) UpdateStudySet(set *models.StudySet) error {
	return s.store.UpdateStudySet(set)
}

func (s *StudyServiceImpl) DeleteStudySet(id, userID uint) error {
	return s.store.DeleteStudySet(id, userID)
}

func (s *StudyServiceImpl) AddFlashcard(userID uint, card *models.Flashcard) error {
	// 归属校验：学习集必须属于当前用户
	if _, err := s.store.GetStudySet(card.StudySetID, userID); err != nil {
		return err
	}
	return s.store.CreateFlashcard(card)
}

func (s *StudyServiceImpl) AddQuizQuestion(userID uint, question *models.QuizQuestion) error {
	if _, err := s.store.GetStudySet(question.StudySetID, userID); err != nil {
		return err
	}
	return s.store.CreateQuizQuestion(question)
}
