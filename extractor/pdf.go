package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// 清理后不足该字符数的 PDF 视为扫描件/无文字内容，按失败处理
const minPDFTextLength = 50

type pdfExtractor struct{}

// Extract 逐页解析 PDF 内容流抽取文本；主策略失败时回退到全量流扫描。
// 两种策略都拿不到足够文本时返回聚合错误。
func (pdfExtractor) Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}

	text, primaryErr := extractByPage(ctx)
	if primaryErr != nil {
		var fallbackErr error
		text, fallbackErr = scanAllStreams(ctx)
		if fallbackErr != nil {
			return "", fmt.Errorf("pdf extraction failed: %v (fallback: %v)", primaryErr, fallbackErr)
		}
	}

	if len([]rune(Sanitize(text))) < minPDFTextLength {
		return "", fmt.Errorf("no extractable text in PDF (likely a scanned document)")
	}

	return text, nil
}

// extractByPage 逐页读取内容流并解析文本算子
func extractByPage(ctx *model.Context) (string, error) {
	var sb strings.Builder

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return "", fmt.Errorf("page %d content: %w", pageNr, err)
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		pageText := parseContentStream(data)
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(pageText)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content found in any page")
	}
	return sb.String(), nil
}

// scanAllStreams 回退策略：遍历交叉引用表里的所有流对象，扫描其中的文本算子
func scanAllStreams(ctx *model.Context) (string, error) {
	var sb strings.Builder

	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if err := sd.Decode(); err != nil {
			continue
		}
		text := parseContentStream(sd.Content)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content found in object streams")
	}
	return sb.String(), nil
}

// pdfStringRe 匹配括号括起的 PDF 字符串字面量
var pdfStringRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// parseContentStream 解析内容流中的文本算子。
// 相邻文本片段用空格连接；文本位置算子（Td/TD）的纵向位移变化
// 视为换行，对应 PDF 里开始新的一个可视行。
func parseContentStream(data []byte) string {
	var sb strings.Builder

	lines := bytes.Split(data, []byte{'\n'})
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		// (text) Tj / [(a) -120 (b)] TJ：展示文本
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteString(text)
					sb.WriteByte(' ')
				}
			}

		// (text) ' ：换行并展示文本
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteByte('\n')
					sb.WriteString(text)
					sb.WriteByte(' ')
				}
			}

		// tx ty Td / tx ty TD：ty 非零说明纵向位置前进了，插入换行
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if tdMovesLine(line) {
				sb.WriteByte('\n')
			} else if sb.Len() > 0 {
				sb.WriteByte(' ')
			}

		// T*：移动到下一行行首
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return strings.TrimSpace(sb.String())
}

// tdMovesLine 取 Td/TD 的第二个操作数（纵向位移）判断是否换行
func tdMovesLine(line []byte) bool {
	fields := strings.Fields(string(line))
	if len(fields) < 3 {
		return false
	}
	ty, err := strconv.ParseFloat(fields[len(fields)-2], 64)
	if err != nil {
		return false
	}
	return ty != 0
}

// decodePDFString 处理 PDF 字符串里的基本转义序列
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// 八进制转义，如 \040 表示空格
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}
