package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// AudioCache keeps generated question audio on disk. Interviewer openings
// and transition phrases repeat across sessions, so only those are worth
// caching; jobseeker-specific questions are always synthesized fresh.
type AudioCache struct {
	cacheDir string
	mutex    sync.RWMutex
}

// Transition phrases reused across every session, both languages
var cachedPhrases = map[string]bool{
	"Thanks for sharing. Let's move on to the next question.":   true,
	"That's interesting. Here's your next question.":            true,
	"Thank you for your time today. The interview is complete.": true,
	"Take a moment to think about your answer.":                 true,
	"Your time for this question is almost up.":                 true,
	"Time is up for this question. Let's continue.":             true,
	"Cảm ơn bạn đã chia sẻ. Chúng ta sang câu hỏi tiếp theo.":   true,
	"Điểm đó rất hay. Đây là câu hỏi tiếp theo của bạn.":        true,
	"Cảm ơn bạn đã tham gia. Buổi phỏng vấn đã kết thúc.":       true,
	"Bạn có thể dành chút thời gian suy nghĩ về câu trả lời.":   true,
	"Thời gian cho câu hỏi này sắp hết.":                        true,
	"Đã hết thời gian cho câu hỏi này. Chúng ta tiếp tục nhé.":  true,
}

// NewAudioCache creates a new audio cache with the specified directory
func NewAudioCache(cacheDir string) *AudioCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		slog.Error("Failed to create cache directory", "dir", cacheDir, "error", err)
	}

	return &AudioCache{
		cacheDir: cacheDir,
	}
}

// generateCacheKey creates a unique key based on text and voice ID
func (ac *AudioCache) generateCacheKey(text, voiceID string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", text, voiceID)))
	return hex.EncodeToString(hash[:])
}

func (ac *AudioCache) getCachePath(key string) string {
	return filepath.Join(ac.cacheDir, key+".mp3")
}

// IsCachedPhrase reports whether the text is a reusable transition phrase
func (ac *AudioCache) IsCachedPhrase(text string) bool {
	return cachedPhrases[text]
}

// Get retrieves cached audio data if it exists
func (ac *AudioCache) Get(ctx context.Context, text, voiceID string) ([]byte, bool) {
	if !ac.IsCachedPhrase(text) {
		return nil, false
	}

	ac.mutex.RLock()
	defer ac.mutex.RUnlock()

	key := ac.generateCacheKey(text, voiceID)
	cachePath := ac.getCachePath(key)

	data, err := os.ReadFile(cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read cached audio", "path", cachePath, "error", err)
		}
		return nil, false
	}

	slog.Info("Audio cache hit", "voice_id", voiceID)
	return data, true
}

// Set stores audio data for a reusable phrase
func (ac *AudioCache) Set(ctx context.Context, text, voiceID string, audioData []byte) error {
	if !ac.IsCachedPhrase(text) {
		return nil
	}

	ac.mutex.Lock()
	defer ac.mutex.Unlock()

	key := ac.generateCacheKey(text, voiceID)
	cachePath := ac.getCachePath(key)

	if err := os.WriteFile(cachePath, audioData, 0644); err != nil {
		slog.Error("Failed to write audio to cache", "path", cachePath, "error", err)
		return err
	}

	slog.Info("Cached phrase audio", "voice_id", voiceID, "size", len(audioData))
	return nil
}

// GetOrGenerate gets cached audio or generates new audio and caches it
func (ac *AudioCache) GetOrGenerate(ctx context.Context, text, voiceID string, generator func() (io.ReadCloser, error)) ([]byte, error) {
	if cachedData, found := ac.Get(ctx, text, voiceID); found {
		return cachedData, nil
	}

	audioReader, err := generator()
	if err != nil {
		return nil, fmt.Errorf("failed to generate audio: %w", err)
	}
	defer audioReader.Close()

	audioData, err := io.ReadAll(audioReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if ac.IsCachedPhrase(text) {
		if err := ac.Set(ctx, text, voiceID, audioData); err != nil {
			slog.Warn("Failed to cache audio", "error", err)
		}
	}

	return audioData, nil
}

// GetCacheStats returns the cached file count and total size on disk
func (ac *AudioCache) GetCacheStats() (int, int64, error) {
	ac.mutex.RLock()
	defer ac.mutex.RUnlock()

	entries, err := os.ReadDir(ac.cacheDir)
	if err != nil {
		return 0, 0, err
	}

	var totalSize int64
	fileCount := 0

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".mp3" {
			fileCount++
			if info, err := entry.Info(); err == nil {
				totalSize += info.Size()
			}
		}
	}

	return fileCount, totalSize, nil
}
