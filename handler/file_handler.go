package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/RigelNana/studygen/extractor"
	"github.com/RigelNana/studygen/middleware"
	"github.com/RigelNana/studygen/models"
	"github.com/RigelNana/studygen/repository"
	"github.com/RigelNana/studygen/service"
)

type FileHandler struct {
	files  service.FileService
	study  service.StudyService
	logger *logrus.Logger
}

func NewFileHandler(files service.FileService, study service.StudyService, logger *logrus.Logger) *FileHandler {
	return &FileHandler{files: files, study: study, logger: logger}
}

// Upload 上传文件
// POST /api/upload
func (h *FileHandler) Upload(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "detail": err.Error()})
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	h.logger.Infof("upload request: userID=%d, filename=%s, mime=%s, size=%d",
		userID, header.Filename, mimeType, header.Size)

	record, err := h.files.Upload(userID, header.Filename, mimeType, file, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type", "detail": mimeType})
		case errors.Is(err, service.ErrFileTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		default:
			h.logger.Errorf("upload failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file"})
		}
		return
	}

	c.JSON(http.StatusOK, fileResponse(record))
}

// GetFile 查询文件状态，抽取完成后附带文本
// GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	file, err := h.files.GetByID(id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		h.logger.Errorf("get file failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch file"})
		return
	}

	c.JSON(http.StatusOK, fileResponse(file))
}

// ListFiles 列出当前用户的所有上传文件
// GET /api/files
func (h *FileHandler) ListFiles(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	files, err := h.files.List(userID)
	if err != nil {
		h.logger.Errorf("list files failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch files"})
		return
	}

	out := make([]gin.H, 0, len(files))
	for _, f := range files {
		out = append(out, fileResponse(f))
	}
	c.JSON(http.StatusOK, gin.H{"files": out})
}

// DeleteFile 删除文件，级联删除生成的学习集
// DELETE /api/files/:id
func (h *FileHandler) DeleteFile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	if err := h.files.Delete(id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		h.logger.Errorf("delete file failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Generate 基于已完成抽取的文件生成闪卡与测验题
// POST /api/files/:id/generate
func (h *FileHandler) Generate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}

	set, cards, questions, err := h.study.GenerateFromFile(c.Request.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, service.ErrFileNotReady):
			c.JSON(http.StatusBadRequest, gin.H{"error": "file not found or text not extracted"})
		default:
			h.logger.Errorf("generation failed for file %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate content"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"study_set":      set,
		"flashcards":     cards,
		"quiz_questions": questions,
	})
}

// fileResponse 按状态裁剪响应字段：抽取文本只在 completed 时返回
func fileResponse(f *models.UploadedFile) gin.H {
	resp := gin.H{
		"id":            f.ID,
		"original_name": f.OriginalName,
		"mime_type":     f.MimeType,
		"status":        f.Status,
		"created_at":    f.CreatedAt,
	}
	if f.StudySetID != nil {
		resp["study_set_id"] = *f.StudySetID
	}
	if f.Status == models.FileStatusCompleted && f.ExtractedText != nil {
		resp["extracted_text"] = *f.ExtractedText
		resp["reading_time_minutes"] = extractor.EstimateReadingTime(*f.ExtractedText)
	}
	return resp
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
