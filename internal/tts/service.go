// Package tts turns lesson text into MP3 audio, optionally rewriting it for
// speech with the content generator first.
package tts

import (
	"context"
	"net/http"
	"strings"

	"github.com/DevSidd2006/learnquest/internal/apierr"
	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

const (
	LanguageCode = "en-US"
	DefaultVoice = "en-US-Neural2-J"
	DefaultSpeed = 0.95
	FormatMP3    = "mp3"
)

// Synthesizer returns base64-encoded MP3 audio for text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, speed float64) (string, error)
}

// SpeechOptimizer rewrites text so it reads well aloud.
type SpeechOptimizer interface {
	OptimizeForSpeech(ctx context.Context, text string) (string, error)
}

type Service struct {
	synth     Synthesizer
	optimizer SpeechOptimizer
	log       *logger.Logger
}

// NewService accepts a nil synth when no API key is configured; Speak then
// fails with 503. optimizer may be nil, which disables enhanced mode.
func NewService(synth Synthesizer, optimizer SpeechOptimizer, log *logger.Logger) *Service {
	return &Service{synth: synth, optimizer: optimizer, log: log.With("component", "tts")}
}

func (s *Service) Speak(ctx context.Context, req models.TTSRequest) (*models.TTSResponse, error) {
	if s.synth == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "Text-to-speech is not configured", nil)
	}

	voice := req.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	speed := DefaultSpeed
	if req.Speed != nil {
		speed = *req.Speed
	}

	text := req.Text
	if req.Enhanced {
		text = s.enhance(ctx, text)
	}
	s.log.Debug("synthesizing speech", "chars", len(text), "voice", voice, "enhanced", req.Enhanced)

	audio, err := s.synth.Synthesize(ctx, text, voice, speed)
	if err != nil {
		return nil, err
	}
	return &models.TTSResponse{AudioContent: audio, Format: FormatMP3}, nil
}

// enhance falls back to the original text on any failure.
func (s *Service) enhance(ctx context.Context, text string) string {
	if s.optimizer == nil {
		return text
	}
	out, err := s.optimizer.OptimizeForSpeech(ctx, text)
	if err != nil {
		s.log.Warn("speech optimization failed, using original text", "error", err)
		return text
	}
	if out = strings.TrimSpace(out); out == "" {
		return text
	}
	return out
}
