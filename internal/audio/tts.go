package audio

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const ttsRequestTimeout = 15 * time.Second

// TTSService proxies pronunciation audio from the upstream synthesizer,
// caching the MP3 bytes on disk so each phrase is only synthesized once.
type TTSService struct {
	baseURL  string
	voice    string
	cacheDir string
	client   *http.Client
}

// NewTTSService creates a TTS service targeting the given upstream base URL.
func NewTTSService(baseURL, voice, cacheDir string) *TTSService {
	return &TTSService{
		baseURL:  baseURL,
		voice:    voice,
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// synthesizeRequest is the upstream wire format.
type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
	Rate  string `json:"rate,omitempty"`
	Pitch string `json:"pitch,omitempty"`
}

// cachePath derives a stable filename from the text and voice.
func (s *TTSService) cachePath(text, voice string) string {
	sum := sha1.Sum([]byte(voice + "|" + text))
	return filepath.Join(s.cacheDir, hex.EncodeToString(sum[:])+".mp3")
}

// Synthesize returns MP3 audio for the given Portuguese text, from the disk
// cache when possible.
func (s *TTSService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return s.SynthesizeVoice(ctx, text, s.voice)
}

// SynthesizeVoice is Synthesize with an explicit voice override.
func (s *TTSService) SynthesizeVoice(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}

	path := s.cachePath(text, voice)
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}

	data, err := s.fetch(ctx, text, voice)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.cacheDir, 0o755); err == nil {
		// Cache write failures are not fatal; the audio still plays.
		_ = os.WriteFile(path, data, 0o644)
	}
	return data, nil
}

// fetch posts the synthesis request upstream and reads the audio bytes.
func (s *TTSService) fetch(ctx context.Context, text, voice string) ([]byte, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, Voice: voice})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts upstream returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("tts upstream returned no audio")
	}
	return data, nil
}

// Healthy pings the upstream health endpoint.
func (s *TTSService) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// PurgeCache removes every cached MP3 and reports how many were deleted.
func (s *TTSService) PurgeCache() (int, error) {
	entries, err := os.ReadDir(s.cacheDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp3" {
			continue
		}
		if err := os.Remove(filepath.Join(s.cacheDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
