package extractor

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFileType(t *testing.T) {
	allowed := []string{MimePDF, MimeDocx, MimeText}
	for _, mime := range allowed {
		if !ValidateFileType(mime) {
			t.Errorf("ValidateFileType(%q) = false, want true", mime)
		}
	}

	rejected := []string{"image/jpeg", "application/json", "video/mp4", "", "invalid"}
	for _, mime := range rejected {
		if ValidateFileType(mime) {
			t.Errorf("ValidateFileType(%q) = true, want false", mime)
		}
	}
}

func TestExtractFileUnsupportedType(t *testing.T) {
	_, err := ExtractFile("nonexistent.bin", "application/octet-stream")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestExtractFilePlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	content := "Hello   World\n\nTest"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractFile(path, MimeText)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if got != "Hello World Test" {
		t.Errorf("got %q, want %q", got, "Hello World Test")
	}
}

func TestExtractFileMissingFile(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "missing.txt"), MimeText)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

// writeDocx 构造一个最小的 .docx 包
func writeDocx(t *testing.T, path string, documentXML string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	entry, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := entry.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractFileDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.docx")
	writeDocx(t, path, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t> paragraph.</w:t></w:r></w:p>
    <w:p></w:p>
  </w:body>
</w:document>`)

	got, err := ExtractFile(path, MimeDocx)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	want := "First paragraph. Second paragraph."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractFileDocxMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	entry, _ := w.Create("other.xml")
	entry.Write([]byte("<x/>"))
	w.Close()
	f.Close()

	_, err = ExtractFile(path, MimeDocx)
	if err == nil {
		t.Fatal("expected error for docx without word/document.xml")
	}
}

// writeMinimalPDF 手工构造单页 PDF，边写边记录对象偏移以生成正确的交叉引用表
func writeMinimalPDF(t *testing.T, path, contentStream string) {
	t.Helper()
	var buf bytes.Buffer
	offsets := make([]int, 6)

	buf.WriteString("%PDF-1.4\n")
	writeObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>")
	writeObj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(contentStream), contentStream))
	writeObj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	startxref := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for n := 1; n <= 5; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", startxref)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractFilePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	writeMinimalPDF(t, path, "BT\n/F1 12 Tf\n(The quick brown fox jumps over the lazy dog near the river bank.) Tj\nET")

	got, err := ExtractFile(path, MimePDF)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	want := "The quick brown fox jumps over the lazy dog near the river bank."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractFileSparsePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.pdf")
	writeMinimalPDF(t, path, "BT\n(Hi) Tj\nET")

	_, err := ExtractFile(path, MimePDF)
	if err == nil || !strings.Contains(err.Error(), "no extractable text") {
		t.Fatalf("expected sparse-text error, got %v", err)
	}
}

func TestExtractFilePDFSparseThresholdCountsRunes(t *testing.T) {
	// 24 个汉字 72 字节：阈值按字符数判断，字节数超过 50 也要报稀疏
	path := filepath.Join(t.TempDir(), "cjk.pdf")
	writeMinimalPDF(t, path, "BT\n(数学物理化学生物历史地理政治语文英语体育美术音乐) Tj\nET")

	_, err := ExtractFile(path, MimePDF)
	if err == nil || !strings.Contains(err.Error(), "no extractable text") {
		t.Fatalf("expected sparse-text error for short CJK text, got %v", err)
	}
}

func TestExtractFileCorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ExtractFile(path, MimePDF)
	if err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
}

func TestParseContentStream(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			"show text operators",
			"BT\n(Hello) Tj\n(World) Tj\nET",
			"Hello World",
		},
		{
			"array operator",
			"[(Frag) -120 (ments)] TJ",
			"Frag ments",
		},
		{
			"vertical move starts new line",
			"(Line one) Tj\n0 -14 Td\n(Line two) Tj",
			"Line one \nLine two",
		},
		{
			"horizontal move keeps line",
			"(Left) Tj\n120 0 Td\n(Right) Tj",
			"Left  Right",
		},
		{
			"escaped parens",
			`(a \(b\) c) Tj`,
			"a (b) c",
		},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseContentStream([]byte(tt.data)); got != tt.want {
				t.Errorf("parseContentStream(%q) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`plain`, "plain"},
		{`a\(b\)`, "a(b)"},
		{`tab\there`, "tab\there"},
		{`oct\040al`, "oct al"},
		{`back\\slash`, `back\slash`},
	}
	for _, tt := range tests {
		if got := decodePDFString([]byte(tt.raw)); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
