package extractor

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"control chars removed", "Hello\u0000World\u0001\u007F\u009C", "HelloWorld"},
		{"replacement char removed", "Hello�World", "HelloWorld"},
		{"whitespace collapsed", "Hello    World\n\n\nTest\t\tData", "Hello World Test Data"},
		{"leading trailing trimmed", "   Hello World   ", "Hello World"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"single spaces preserved", "a b c", "a b c"},
		{"non latin preserved", "数学 与 физика - déjà vu", "数学 与 физика - déjà vu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello   World\n\nTest",
		"   mixed�  content\t here ",
		"already clean text",
		"",
	}
	for _, input := range inputs {
		once := Sanitize(input)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestGetFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"document.pdf", "pdf"},
		{"file.docx", "docx"},
		{"my.file.name.PDF", "pdf"},
		{"filename", ""},
		{"FILE.PDF", "pdf"},
	}
	for _, tt := range tests {
		if got := GetFileExtension(tt.filename); got != tt.want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestEstimateReadingTime(t *testing.T) {
	if got := EstimateReadingTime(""); got != 0 {
		t.Errorf("EstimateReadingTime(\"\") = %d, want 0", got)
	}

	words := ""
	for i := 0; i < 400; i++ {
		words += "word "
	}
	if got := EstimateReadingTime(words); got != 2 {
		t.Errorf("EstimateReadingTime(400 words) = %d, want 2", got)
	}

	if got := EstimateReadingTime("just a few words"); got != 1 {
		t.Errorf("EstimateReadingTime(short text) = %d, want 1", got)
	}
}
