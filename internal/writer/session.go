package writer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SessionManager manages the per-run output directory: question files, the
// session log and a backup of the config that produced the run.
type SessionManager struct {
	sessionDir string
	logger     *slog.Logger
}

// NewSessionManager creates a timestamped session directory under outputDir.
func NewSessionManager(outputDir string, logger *slog.Logger) (*SessionManager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T15-04-05")
	sessionDir := filepath.Join(outputDir, "session_"+timestamp)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	logger.Info("created session directory", "path", sessionDir)
	return &SessionManager{sessionDir: sessionDir, logger: logger}, nil
}

// GetSessionDir returns the session directory path.
func (sm *SessionManager) GetSessionDir() string {
	return sm.sessionDir
}

// GetQuestionsDir returns the directory for per-topic question files.
func (sm *SessionManager) GetQuestionsDir() string {
	return filepath.Join(sm.sessionDir, "questions")
}

// GetLogPath returns the full path to the session log file.
func (sm *SessionManager) GetLogPath() string {
	return filepath.Join(sm.sessionDir, "session.log")
}

// BackupConfig copies the config file into the session directory.
func (sm *SessionManager) BackupConfig(configPath string) error {
	source, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	backupPath := filepath.Join(sm.sessionDir, "config.toml.bak")
	if err := os.WriteFile(backupPath, source, 0644); err != nil {
		return fmt.Errorf("failed to write config backup: %w", err)
	}

	sm.logger.Info("backed up config file", "path", backupPath)
	return nil
}
