package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// TTSService voices interviewer questions through the ElevenLabs API so
// sessions can be practiced hands-free.
type TTSService struct {
	apiKey string
	client *http.Client
	cache  *AudioCache
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Stock voice pools. The multilingual model handles Vietnamese output, so
// pools are split by persona rather than language.
var femaleVoices = []string{
	"EXAVITQu4vr4xnSDxMaL", // Rachel
	"21m00Tcm4TlvDq8ikWAM", // Domi
	"AZnzlk1XvdvUeBnXmlld", // Bella
	"ErXwobaYiN019PkySvjV", // Elli
	"MF3mGyEYCl7XYWbV9V6O", // Dorothy
}

var maleVoices = []string{
	"pNInz6obpgDQGcFmaJgB", // Adam
	"TxGEqnHWrfWFTfGW9XjX", // Antoni
	"VR6AewLTigWG4xSOukaG", // Josh
	"yoZ06aMxZJJ28mfd3POQ", // Arnold
	"bVMeCyTHy58xNoL34h3p", // Clyde
}

// Persona names whose conventional reading is female; everything else
// falls through to the male pool.
var femaleNames = map[string]bool{
	"hương": true, "lan": true, "linh": true, "mai": true,
	"sarah": true, "emily": true, "jessica": true, "amanda": true,
}

func NewTTSService(apiKey string, cache *AudioCache) *TTSService {
	if apiKey == "" {
		slog.Warn("ElevenLabs API key not configured, question audio disabled")
		return nil
	}
	return &TTSService{
		apiKey: apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		cache: cache,
	}
}

// VoiceForInterviewer maps a persona name to a fixed stock voice so the
// same session always sounds like the same person.
func VoiceForInterviewer(name string) string {
	pool := maleVoices
	if femaleNames[strings.ToLower(name)] {
		pool = femaleVoices
	}

	h := sha1.New()
	h.Write([]byte(strings.ToLower(name)))
	sum := h.Sum(nil)
	idx := binary.BigEndian.Uint16(sum) % uint16(len(pool))
	return pool[idx]
}

// SpeakQuestion returns MP3 audio for a question, read in the session's
// interviewer voice. Cached phrases skip the API round trip.
func (t *TTSService) SpeakQuestion(ctx context.Context, text, interviewerName string) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("tts not configured")
	}

	voiceID := VoiceForInterviewer(interviewerName)
	return t.cache.GetOrGenerate(ctx, text, voiceID, func() (io.ReadCloser, error) {
		return t.synthesize(ctx, text, voiceID)
	})
}

// CacheStats reports the on-disk audio cache size for health reporting.
func (t *TTSService) CacheStats() (int, int64, error) {
	if t == nil || t.cache == nil {
		return 0, 0, nil
	}
	return t.cache.GetCacheStats()
}

func (t *TTSService) synthesize(ctx context.Context, text, voiceID string) (io.ReadCloser, error) {
	request := ttsRequest{
		Text:    text,
		ModelID: "eleven_turbo_v2_5", // multilingual, fast enough for question playback
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := "https://api.elevenlabs.io/v1/text-to-speech/" + voiceID
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("elevenlabs API error: %d - %s", resp.StatusCode, string(body))
	}

	slog.Info("Generated question audio", "text_length", len(text), "voice_id", voiceID)
	return resp.Body, nil
}
