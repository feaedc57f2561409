package writer

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmalunga/syllabussense/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testQuestion(id string) models.Question {
	return models.Question{
		QuestionID: id,
		Text:       "What is water made of?",
		Topic:      "Matter",
		Difficulty: "easy",
		Choices: []models.Choice{
			{Text: "H2O", IsCorrect: true},
			{Text: "CO2"},
		},
		Solution: models.Solution{Explanation: "Water is H2O."},
	}
}

func readQuestions(t *testing.T, path string) []models.Question {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	return questions
}

func TestFileStoreSaveAndMerge(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Save("States of Matter", []models.Question{testQuestion("q1")}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save("States of Matter", []models.Question{testQuestion("q2"), testQuestion("q3")}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path := filepath.Join(dir, "States_of_Matter.json")
	questions := readQuestions(t, path)
	if len(questions) != 3 {
		t.Fatalf("merged file has %d questions, want 3", len(questions))
	}
	if questions[0].QuestionID != "q1" || questions[2].QuestionID != "q3" {
		t.Errorf("merge order wrong: got %s..%s", questions[0].QuestionID, questions[2].QuestionID)
	}
}

func TestFileStoreSaveEmptyIsNoop(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Save("Empty", nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Empty.json")); !os.IsNotExist(err) {
		t.Errorf("empty save created a file")
	}
}

func TestFileStoreCorruptExistingDiscarded(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	path := filepath.Join(dir, "Matter.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := store.Save("Matter", []models.Question{testQuestion("q1")}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	questions := readQuestions(t, path)
	if len(questions) != 1 {
		t.Errorf("file has %d questions, want 1 (corrupt content discarded)", len(questions))
	}
}

func TestFileStoreSeparateTopics(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := store.Save("Acids", []models.Question{testQuestion("a1")}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save("Bases", []models.Question{testQuestion("b1")}); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"Acids.json", "Bases.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestNewFileStoreRejectsFilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "occupied")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path, testLogger()); err == nil {
		t.Errorf("NewFileStore() on a regular file: expected error, got nil")
	}
}

func TestSafeTopicFilename(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  string
	}{
		{name: "spaces become underscores", topic: "States of Matter", want: "States_of_Matter"},
		{name: "slashes become underscores", topic: "Acids/Bases", want: "Acids_Bases"},
		{name: "special characters dropped", topic: "What? Why! (Really)", want: "What_Why_Really"},
		{name: "leading and trailing dots trimmed", topic: "..hidden..", want: "hidden"},
		{name: "empty falls back", topic: "", want: "untitled"},
		{name: "only punctuation falls back", topic: "???", want: "untitled"},
		{name: "hyphens and digits kept", topic: "Unit-2 Review", want: "Unit-2_Review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeTopicFilename(tt.topic); got != tt.want {
				t.Errorf("SafeTopicFilename(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}
