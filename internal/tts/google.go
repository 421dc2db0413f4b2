package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"

	"github.com/DevSidd2006/learnquest/internal/apierr"
)

// GoogleSynthesizer calls the Cloud Text-to-Speech v1 REST API with an API key.
type GoogleSynthesizer struct {
	svc *texttospeech.Service
}

// NewGoogleSynthesizer builds a client authenticated by apiKey. Extra options
// (an endpoint override in tests) are appended.
func NewGoogleSynthesizer(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("text-to-speech API key is empty")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}
	return &GoogleSynthesizer{svc: svc}, nil
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, voice string, speed float64) (string, error) {
	resp, err := g.svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: LanguageCode,
			Name:         voice,
			SsmlGender:   "NEUTRAL",
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  speed,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", upstreamError(err)
	}
	if resp.AudioContent == "" {
		return "", apierr.Internal("No audio content received", nil)
	}
	return resp.AudioContent, nil
}

// upstreamError keeps the provider's status code so the client sees it.
func upstreamError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return apierr.Internal("Failed to generate speech", err)
	}
	var details interface{} = gerr.Message
	if len(gerr.Body) > 0 && json.Valid([]byte(gerr.Body)) {
		details = json.RawMessage(gerr.Body)
	}
	return apierr.Upstream(gerr.Code, "TTS generation failed", details, err)
}
