package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.txt")
	content := `# morning checks
how is my computer doing?

what changed since yesterday?
  # indented comments count too
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write questions: %v", err)
	}

	questions, err := readQuestions(path)
	if err != nil {
		t.Fatalf("readQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("Expected 2 questions, got %v", questions)
	}
	if questions[0] != "how is my computer doing?" {
		t.Errorf("Unexpected first question %q", questions[0])
	}
}

func TestReadQuestions_MissingFile(t *testing.T) {
	if _, err := readQuestions(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
