// Package extractor 从上传的文档中抽取纯文本。
//
// 支持的 MIME 类型：
//   - text/plain — 按 UTF-8 直接读取
//   - application/vnd.openxmlformats-officedocument.wordprocessingml.document
//     — 读取 zip 包内 word/document.xml，拼接段落文本
//   - application/pdf — pdfcpu 逐页解析内容流，失败时回退到全量流扫描
//
// 所有抽取结果在返回前都会经过 Sanitize。
package extractor

import (
	"errors"
	"fmt"
)

const (
	MimePDF  = "application/pdf"
	MimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor 从文件路径抽取未清理的原始文本
type Extractor interface {
	Extract(path string) (string, error)
}

// MIME 类型到抽取器的静态映射，未知类型一律拒绝
var extractors = map[string]Extractor{
	MimePDF:  pdfExtractor{},
	MimeDocx: docxExtractor{},
	MimeText: textExtractor{},
}

// ValidateFileType 校验 MIME 类型是否在允许列表内
func ValidateFileType(mimeType string) bool {
	_, ok := extractors[mimeType]
	return ok
}

// ExtractFile 按 MIME 类型分发到对应抽取器并清理输出
func ExtractFile(path string, mimeType string) (string, error) {
	ext, ok := extractors[mimeType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}

	raw, err := ext.Extract(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s file: %w", mimeType, err)
	}

	return Sanitize(raw), nil
}
