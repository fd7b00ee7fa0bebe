package extractor

import (
	"strings"
	"unicode"
)

// Sanitize 清理抽取出的原始文本：去掉 C0/C1 控制字符和 U+FFFD 替换符，
// 空白序列折叠为单个空格并去除首尾空白。幂等：Sanitize(Sanitize(x)) == Sanitize(x)。
func Sanitize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		if isGarbageRune(r) {
			continue
		}
		sb.WriteRune(r)
		prevSpace = false
	}

	return strings.TrimSpace(sb.String())
}

// isGarbageRune 判断控制字符（C0/C1）与替换字符
func isGarbageRune(r rune) bool {
	if r == '�' {
		return true
	}
	if r < 0x0020 {
		return true
	}
	if r >= 0x007F && r <= 0x009F {
		return true
	}
	return false
}

// GetFileExtension 返回文件名的小写扩展名，没有扩展名时返回空串
func GetFileExtension(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

const wordsPerMinute = 200

// EstimateReadingTime 按 200 词/分钟估算阅读时间（分钟，向上取整）
func EstimateReadingTime(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
