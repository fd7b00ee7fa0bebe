package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/RigelNana/studygen/middleware"
	"github.com/RigelNana/studygen/models"
	"github.com/RigelNana/studygen/repository"
	"github.com/RigelNana/studygen/service"
)

type StudySetHandler struct {
	study  service.StudyService
	logger *logrus.Logger
}

func NewStudySetHandler(study service.StudyService, logger *logrus.Logger) *StudySetHandler {
	return &StudySetHandler{study: study, logger: logger}
}

type createStudySetRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type createFlashcardRequest struct {
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
	Order    int    `json:"order"`
}

type createQuizQuestionRequest struct {
	Question      string   `json:"question" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2"`
	CorrectAnswer int      `json:"correct_answer"`
	Order         int      `json:"order"`
}

// List 学习集列表
// GET /api/study-sets
func (h *StudySetHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	sets, err := h.study.ListStudySets(userID)
	if err != nil {
		h.logger.Errorf("list study sets failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch study sets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"study_sets": sets})
}

// Create 新建学习集
// POST /api/study-sets
func (h *StudySetHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req createStudySetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := &models.StudySet{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.study.CreateStudySet(set); err != nil {
		h.logger.Errorf("create study set failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create study set"})
		return
	}
	c.JSON(http.StatusCreated, set)
}

// Get 学习集详情，包含闪卡和测验题
// GET /api/study-sets/:id
func (h *StudySetHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid study set id"})
		return
	}

	set, cards, questions, err := h.study.GetStudySet(id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study set not found"})
			return
		}
		h.logger.Errorf("get study set failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch study set"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"study_set":      set,
		"flashcards":     cards,
		"quiz_questions": questions,
	})
}

// Update 更新学习集标题/描述
// PUT /api/study-sets/:id
func (h *StudySetHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid study set id"})
		return
	}

	var req createStudySetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set, _, _, err := h.study.GetStudySet(id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study set not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch study set"})
		return
	}

	set.Title = req.Title
	set.Description = req.Description
	if err := h.study.UpdateStudySet(set); err != nil {
		h.logger.Errorf("update study set failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update study set"})
		return
	}
	c.JSON(http.StatusOK, set)
}

// Delete 删除学习集及其全部内容
// DELETE /api/study-sets/:id
func (h *StudySetHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid study set id"})
		return
	}

	if err := h.study.DeleteStudySet(id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study set not found"})
			return
		}
		h.logger.Errorf("delete study set failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete study set"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddFlashcard 手动添加闪卡
// POST /api/study-sets/:id/flashcards
func (h *StudySetHandler) AddFlashcard(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid study set id"})
		return
	}

	var req createFlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card := &models.Flashcard{
		StudySetID: id,
		Question:   req.Question,
		Answer:     req.Answer,
		Order:      req.Order,
	}
	if err := h.study.AddFlashcard(userID, card); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study set not found"})
			return
		}
		h.logger.Errorf("add flashcard failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create flashcard"})
		return
	}
	c.JSON(http.StatusCreated, card)
}

// AddQuizQuestion 手动添加测验题
// POST /api/study-sets/:id/quiz-questions
func (h *StudySetHandler) AddQuizQuestion(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid study set id"})
		return
	}

	var req createQuizQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CorrectAnswer < 0 || req.CorrectAnswer >= len(req.Options) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "correct_answer out of range"})
		return
	}

	optionsJSON, err := json.Marshal(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid options"})
		return
	}

	question := &models.QuizQuestion{
		StudySetID:    id,
		Question:      req.Question,
		Options:       datatypes.JSON(optionsJSON),
		CorrectAnswer: req.CorrectAnswer,
		Order:         req.Order,
	}
	if err := h.study.AddQuizQuestion(userID, question); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "study set not found"})
			return
		}
		h.logger.Errorf("add quiz question failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create quiz question"})
		return
	}
	c.JSON(http.StatusCreated, question)
}
