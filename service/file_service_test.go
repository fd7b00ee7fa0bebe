package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/RigelNana/studygen/extractor"
	"github.com/RigelNana/studygen/models"
	"github.com/RigelNana/studygen/repository"
)

func newTestFileService(t *testing.T, store repository.Storage) *FileServiceImpl {
	t.Helper()
	svc, err := NewFileService(store, t.TempDir(), 10<<20, 5*time.Second, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

// waitForTerminal 轮询直到文件进入终态
func waitForTerminal(t *testing.T, store repository.Storage, id, userID uint) *models.UploadedFile {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		file, err := store.GetUploadedFile(id, userID)
		if err != nil {
			t.Fatal(err)
		}
		if models.IsTerminal(file.Status) {
			return file
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("file never reached a terminal status")
	return nil
}

// waitForEmptyDir 轮询直到临时目录清空；删除发生在状态落库之后
func waitForEmptyDir(t *testing.T, dir string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("temp files were not cleaned up")
}

func TestUploadTextFile(t *testing.T) {
	store := repository.NewMemoryStorage()
	svc := newTestFileService(t, store)

	content := "Hello   World\n\nTest"
	file, err := svc.Upload(1, "notes.txt", extractor.MimeText, strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if file.Status != models.FileStatusProcessing {
		t.Errorf("initial status = %q, want processing", file.Status)
	}

	got := waitForTerminal(t, store, file.ID, 1)
	if got.Status != models.FileStatusCompleted {
		t.Fatalf("final status = %q, want completed", got.Status)
	}
	if got.ExtractedText == nil || *got.ExtractedText != "Hello World Test" {
		t.Errorf("extracted text = %v, want %q", got.ExtractedText, "Hello World Test")
	}

	// 临时文件抽取结束后必须被删除
	waitForEmptyDir(t, svc.uploadDir)
}

func TestUploadUnsupportedType(t *testing.T) {
	store := repository.NewMemoryStorage()
	svc := newTestFileService(t, store)

	_, err := svc.Upload(1, "photo.jpg", "image/jpeg", strings.NewReader("data"), 4)
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}

	// 校验失败时不能留下任何记录
	files, err := store.ListUploadedFiles(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected no records after rejected upload, got %d", len(files))
	}
}

func TestUploadTooLarge(t *testing.T) {
	store := repository.NewMemoryStorage()
	svc, err := NewFileService(store, t.TempDir(), 16, time.Second, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Upload(1, "big.txt", extractor.MimeText, strings.NewReader("0123456789"), 100)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	files, _ := store.ListUploadedFiles(1)
	if len(files) != 0 {
		t.Errorf("expected no records after rejected upload, got %d", len(files))
	}
}

func TestUploadDeclaredSizeSmallerThanPayload(t *testing.T) {
	store := repository.NewMemoryStorage()
	svc, err := NewFileService(store, t.TempDir(), 8, time.Second, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	// 声明大小合法但实际内容超限，复制阶段兜底拦截
	_, err = svc.Upload(1, "lie.txt", extractor.MimeText, strings.NewReader("way more than eight bytes"), 4)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestProcessFileTimeout(t *testing.T) {
	store := repository.NewMemoryStorage()
	dir := t.TempDir()
	svc, err := NewFileService(store, dir, 10<<20, 20*time.Millisecond, quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	file := &models.UploadedFile{
		UserID:       1,
		OriginalName: "slow.txt",
		MimeType:     extractor.MimeText,
		Status:       models.FileStatusProcessing,
	}
	if err := store.CreateUploadedFile(file); err != nil {
		t.Fatal(err)
	}

	// FIFO 让读取一直阻塞，确定性地触发超时分支
	path := filepath.Join(dir, "slow.txt")
	if err := syscall.Mkfifo(path, 0o600); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		svc.processFile(file.ID, path, extractor.MimeText)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("processFile did not return after timeout")
	}

	got, err := store.GetUploadedFile(file.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.FileStatusError {
		t.Errorf("status = %q, want error", got.Status)
	}
	if got.ExtractedText != nil {
		t.Error("timed-out extraction must not persist text")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temp file not removed after timeout")
	}
}

func TestUploadCorruptPDF(t *testing.T) {
	store := repository.NewMemoryStorage()
	svc := newTestFileService(t, store)

	content := "definitely not a pdf"
	file, err := svc.Upload(1, "broken.pdf", extractor.MimePDF, strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	got := waitForTerminal(t, store, file.ID, 1)
	if got.Status != models.FileStatusError {
		t.Fatalf("final status = %q, want error", got.Status)
	}
	if got.ExtractedText != nil {
		t.Error("failed extraction must not persist text")
	}

	waitForEmptyDir(t, svc.uploadDir)
}
