package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/RigelNana/studygen/extractor"
	"github.com/RigelNana/studygen/metrics"
	"github.com/RigelNana/studygen/models"
	"github.com/RigelNana/studygen/repository"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

type FileService interface {
	// Upload 校验并落盘上传文件，创建 processing 状态的记录后立即返回；
	// 文本抽取在后台 goroutine 中完成
	Upload(userID uint, originalName, mimeType string, src io.Reader, size int64) (*models.UploadedFile, error)
	GetByID(id, userID uint) (*models.UploadedFile, error)
	List(userID uint) ([]*models.UploadedFile, error)
	Delete(id, userID uint) error
}

type FileServiceImpl struct {
	store          repository.Storage
	uploadDir      string
	maxSizeBytes   int64
	extractTimeout time.Duration
	logger         *logrus.Logger
}

func NewFileService(store repository.Storage, uploadDir string, maxSizeBytes int64, extractTimeout time.Duration, logger *logrus.Logger) (*FileServiceImpl, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &FileServiceImpl{
		store:          store,
		uploadDir:      uploadDir,
		maxSizeBytes:   maxSizeBytes,
		extractTimeout: extractTimeout,
		logger:         logger,
	}, nil
}

func (s *FileServiceImpl) Upload(userID uint, originalName, mimeType string, src io.Reader, size int64) (*models.UploadedFile, error) {
	// 校验失败时直接拒绝，不创建任何记录
	if !extractor.ValidateFileType(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mimeType)
	}
	if size > s.maxSizeBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, s.maxSizeBytes)
	}

	// 生成唯一的临时文件名
	storedName := uuid.New().String()
	if ext := extractor.GetFileExtension(originalName); ext != "" {
		storedName += "." + ext
	}
	path := filepath.Join(s.uploadDir, storedName)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, s.maxSizeBytes+1))
	dst.Close()
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if written > s.maxSizeBytes {
		os.Remove(path)
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrFileTooLarge, s.maxSizeBytes)
	}

	file := &models.UploadedFile{
		UserID:       userID,
		Filename:     storedName,
		OriginalName: originalName,
		MimeType:     mimeType,
		Status:       models.FileStatusProcessing,
	}
	if err := s.store.CreateUploadedFile(file); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	// 抽取在响应返回后执行，调用方轮询状态接口观察结果
	go s.processFile(file.ID, path, mimeType)

	return file, nil
}

// processFile 后台抽取任务：带超时，临时文件无论成败都会删除
func (s *FileServiceImpl) processFile(id uint, path, mimeType string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.extractTimeout)
	defer cancel()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warnf("failed to remove temp file %s: %v", path, err)
		}
	}()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := extractor.ExtractFile(path, mimeType)
		done <- result{text: text, err: err}
	}()

	var text string
	var err error
	select {
	case r := <-done:
		text, err = r.text, r.err
	case <-ctx.Done():
		err = fmt.Errorf("extraction timed out after %s", s.extractTimeout)
	}

	if err != nil {
		// 失败原因只进日志，不写入用户可见的记录
		s.logger.Errorf("extraction failed for file %d: %v", id, err)
		metrics.FilesProcessed.WithLabelValues(models.FileStatusError).Inc()
		if updateErr := s.store.FinishExtraction(id, models.FileStatusError, nil); updateErr != nil {
			s.logger.Errorf("failed to mark file %d as error: %v", id, updateErr)
		}
		return
	}

	metrics.FilesProcessed.WithLabelValues(models.FileStatusCompleted).Inc()
	if updateErr := s.store.FinishExtraction(id, models.FileStatusCompleted, &text); updateErr != nil {
		s.logger.Errorf("failed to mark file %d as completed: %v", id, updateErr)
	}
}

func (s *FileServiceImpl) GetByID(id, userID uint) (*models.UploadedFile, error) {
	return s.store.GetUploadedFile(id, userID)
}

func (s *FileServiceImpl) List(userID uint) ([]*models.UploadedFile, error) {
	return s.store.ListUploadedFiles(userID)
}

func (s *FileServiceImpl) Delete(id, userID uint) error {
	return s.store.DeleteUploadedFile(id, userID)
}
