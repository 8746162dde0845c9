package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/immxrtalbeast/lingualink/internal/domain"
	"github.com/immxrtalbeast/lingualink/lib/logger/sl"
)

// Transcript is what a transcription collaborator returns for one
// audio chunk.
type Transcript struct {
	Text       string
	Language   string
	Confidence float64
	Provider   string
}

// Translation is one translated utterance.
type Translation struct {
	TranslatedText string
	Provider       string
}

// Transcriber and Translator are the external speech collaborators. The
// pipeline only needs their request/response contract; providers live
// outside this repository.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (Transcript, error)
	Providers() []string
}

type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (Translation, error)
	Providers() []string
}

// PipelineService routes audio-chunk events through transcription and
// translation and fans the results back into the room. It is glue
// around the signaling core, not part of it: a failed chunk is logged
// and dropped, never surfaced to the room.
type PipelineService struct {
	signaling   *SignalingService
	transcriber Transcriber
	translator  Translator
	targetLang  string
	log         *slog.Logger
}

func NewPipelineService(signaling *SignalingService, transcriber Transcriber, translator Translator, targetLang string, log *slog.Logger) *PipelineService {
	if log == nil {
		log = slog.Default()
	}
	if targetLang == "" {
		targetLang = "pt"
	}
	return &PipelineService{
		signaling:   signaling,
		transcriber: transcriber,
		translator:  translator,
		targetLang:  targetLang,
		log:         log,
	}
}

// HandleAudioChunk transcribes the chunk, sends the transcription back
// to the speaker and the translated text to everyone else in the room.
func (s *PipelineService) HandleAudioChunk(ctx context.Context, sender *domain.Client, audio []byte) {
	const op = "service.pipeline.audio"
	log := s.log.With(
		slog.String("op", op),
		slog.String("participant_id", sender.ParticipantInfo().ID),
	)

	roomID := sender.Room()
	if roomID == "" || len(audio) == 0 {
		return
	}

	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		log.Error("transcription failed", sl.Err(err))
		return
	}
	if strings.TrimSpace(transcript.Text) == "" {
		return
	}

	sender.EnqueueEvent(domain.Event{
		Type: domain.EventTranscription,
		Room: roomID,
		Payload: map[string]any{
			"text":       transcript.Text,
			"language":   transcript.Language,
			"confidence": transcript.Confidence,
			"provider":   transcript.Provider,
		},
	})

	translation, err := s.translator.Translate(ctx, transcript.Text, transcript.Language, s.targetLang)
	if err != nil {
		log.Error("translation failed", sl.Err(err))
		return
	}

	s.signaling.Broadcast(roomID, domain.Event{
		Type: domain.EventTranslatedText,
		Room: roomID,
		From: sender.ParticipantInfo().ID,
		Payload: map[string]any{
			"originalText":   transcript.Text,
			"translatedText": translation.TranslatedText,
			"sourceLanguage": transcript.Language,
			"targetLanguage": s.targetLang,
			"provider":       translation.Provider,
		},
	}, sender.ParticipantInfo().ID)
}

func (s *PipelineService) TranscriptionProviders() []string {
	return s.transcriber.Providers()
}

func (s *PipelineService) TranslationProviders() []string {
	return s.translator.Providers()
}

// DisabledTranscriber acknowledges audio without transcribing it, the
// behavior the system runs with when no provider is configured.
type DisabledTranscriber struct{}

func (DisabledTranscriber) Transcribe(ctx context.Context, audio []byte) (Transcript, error) {
	return Transcript{
		Text:       "Audio received (transcription disabled)",
		Language:   "en",
		Confidence: 1.0,
		Provider:   "disabled",
	}, nil
}

func (DisabledTranscriber) Providers() []string { return nil }

// EchoTranslator tags the text with the target language instead of
// translating, so the full event path stays exercised without a
// provider.
type EchoTranslator struct{}

func (EchoTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (Translation, error) {
	return Translation{
		TranslatedText: "[" + strings.ToUpper(targetLang) + "] " + text,
		Provider:       "echo",
	}, nil
}

func (EchoTranslator) Providers() []string { return nil }
