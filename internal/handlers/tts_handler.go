package handlers

import (
	"net/http"

	"lusolingo/internal/audio"
)

// TTSHandler proxies text-to-speech requests to the configured voice server
type TTSHandler struct {
	ttsService *audio.TTSService
}

// NewTTSHandler creates a new TTS handler
func NewTTSHandler(ttsService *audio.TTSService) *TTSHandler {
	return &TTSHandler{ttsService: ttsService}
}

// Speak synthesizes the requested text and streams back MP3 audio
func (h *TTSHandler) Speak(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		respondWithError(w, http.StatusBadRequest, "Missing text parameter", "", nil)
		return
	}

	var (
		data []byte
		err  error
	)
	if voice := r.URL.Query().Get("voice"); voice != "" {
		data, err = h.ttsService.SynthesizeVoice(r.Context(), text, voice)
	} else {
		data, err = h.ttsService.Synthesize(r.Context(), text)
	}
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Speech synthesis failed", "TTS upstream error", err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		return
	}
}

// Health reports whether the upstream voice server is reachable
func (h *TTSHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"healthy": h.ttsService.Healthy(r.Context())})
}
