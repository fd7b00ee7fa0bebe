package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/RigelNana/studygen/models"
)

// MemoryStorage 进程内存储：map + 自增计数器，单把互斥锁保证单写者。
// 用于本地开发与测试，语义与 PostgresStorage 保持一致。
type MemoryStorage struct {
	mu sync.Mutex

	users         map[uint]*models.User
	files         map[uint]*models.UploadedFile
	studySets     map[uint]*models.StudySet
	flashcards    map[uint]*models.Flashcard
	quizQuestions map[uint]*models.QuizQuestion

	nextUserID      uint
	nextFileID      uint
	nextStudySetID  uint
	nextFlashcardID uint
	nextQuestionID  uint
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:           map[uint]*models.User{},
		files:           map[uint]*models.UploadedFile{},
		studySets:       map[uint]*models.StudySet{},
		flashcards:      map[uint]*models.Flashcard{},
		quizQuestions:   map[uint]*models.QuizQuestion{},
		nextUserID:      1,
		nextFileID:      1,
		nextStudySetID:  1,
		nextFlashcardID: 1,
		nextQuestionID:  1,
	}
}

func (s *MemoryStorage) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.nextUserID
	s.nextUserID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStorage) GetUserByID(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryStorage) GetUserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) CreateUploadedFile(file *models.UploadedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file.ID = s.nextFileID
	s.nextFileID++
	file.CreatedAt = time.Now()
	file.UpdatedAt = file.CreatedAt
	clone := *file
	s.files[file.ID] = &clone
	return nil
}

func (s *MemoryStorage) GetUploadedFile(id, userID uint) (*models.UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok || file.UserID != userID {
		return nil, ErrNotFound
	}
	clone := *file
	return &clone, nil
}

func (s *MemoryStorage) ListUploadedFiles(userID uint) ([]*models.UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var files []*models.UploadedFile
	for _, file := range s.files {
		if file.UserID == userID {
			clone := *file
			files = append(files, &clone)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

func (s *MemoryStorage) FinishExtraction(id uint, status string, extractedText *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok || file.Status != models.FileStatusProcessing {
		return ErrNotFound
	}
	file.Status = status
	file.ExtractedText = extractedText
	file.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) LinkStudySet(fileID, studySetID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[fileID]
	if !ok {
		return ErrNotFound
	}
	file.StudySetID = &studySetID
	file.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) DeleteUploadedFile(id, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.files[id]
	if !ok || file.UserID != userID {
		return ErrNotFound
	}
	if file.StudySetID != nil {
		s.deleteStudySetLocked(*file.StudySetID)
	}
	delete(s.files, id)
	return nil
}

func (s *MemoryStorage) CreateStudySet(set *models.StudySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set.ID = s.nextStudySetID
	s.nextStudySetID++
	set.CreatedAt = time.Now()
	set.UpdatedAt = set.CreatedAt
	clone := *set
	s.studySets[set.ID] = &clone
	return nil
}

func (s *MemoryStorage) GetStudySet(id, userID uint) (*models.StudySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.studySets[id]
	if !ok || set.UserID != userID {
		return nil, ErrNotFound
	}
	clone := *set
	return &clone, nil
}

func (s *MemoryStorage) ListStudySets(userID uint) ([]*models.StudySet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []*models.StudySet
	for _, set := range s.studySets {
		if set.UserID == userID {
			clone := *set
			sets = append(sets, &clone)
		}
	}
	sort.Slice(sets, func(i, j int) bool {
		return sets[i].CreatedAt.After(sets[j].CreatedAt)
	})
	return sets, nil
}

func (s *MemoryStorage) UpdateStudySet(set *models.StudySet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.studySets[set.ID]; !ok {
		return ErrNotFound
	}
	set.UpdatedAt = time.Now()
	clone := *set
	s.studySets[set.ID] = &clone
	return nil
}

func (s *MemoryStorage) DeleteStudySet(id, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.studySets[id]
	if !ok || set.UserID != userID {
		return ErrNotFound
	}
	s.deleteStudySetLocked(id)
	return nil
}

// deleteStudySetLocked 级联删除学习集的闪卡与测验题，调用方必须持锁
func (s *MemoryStorage) deleteStudySetLocked(id uint) {
	for cardID, card := range s.flashcards {
		if card.StudySetID == id {
			delete(s.flashcards, cardID)
		}
	}
	for qID, q := range s.quizQuestions {
		if q.StudySetID == id {
			delete(s.quizQuestions, qID)
		}
	}
	delete(s.studySets, id)
}

func (s *MemoryStorage) CreateFlashcard(card *models.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card.ID = s.nextFlashcardID
	s.nextFlashcardID++
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt
	clone := *card
	s.flashcards[card.ID] = &clone
	return nil
}

func (s *MemoryStorage) ListFlashcards(studySetID uint) ([]*models.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cards []*models.Flashcard
	for _, card := range s.flashcards {
		if card.StudySetID == studySetID {
			clone := *card
			cards = append(cards, &clone)
		}
	}
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Order != cards[j].Order {
			return cards[i].Order < cards[j].Order
		}
		return cards[i].ID < cards[j].ID
	})
	return cards, nil
}

func (s *MemoryStorage) CreateQuizQuestion(question *models.QuizQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	question.ID = s.nextQuestionID
	s.nextQuestionID++
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	clone := *question
	s.quizQuestions[question.ID] = &clone
	return nil
}

func (s *MemoryStorage) ListQuizQuestions(studySetID uint) ([]*models.QuizQuestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var questions []*models.QuizQuestion
	for _, q := range s.quizQuestions {
		if q.StudySetID == studySetID {
			clone := *q
			questions = append(questions, &clone)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].Order != questions[j].Order {
			return questions[i].Order < questions[j].Order
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}
