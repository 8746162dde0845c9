package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immxrtalbeast/lingualink/internal/domain"
)

type stubTranscriber struct {
	transcript Transcript
	err        error
	gotAudio   []byte
}

func (s *stubTranscriber) Transcribe(_ context.Context, audio []byte) (Transcript, error) {
	s.gotAudio = audio
	return s.transcript, s.err
}

func (s *stubTranscriber) Providers() []string { return []string{"stub"} }

type stubTranslator struct {
	translation Translation
	err         error
	gotText     string
	gotTarget   string
}

func (s *stubTranslator) Translate(_ context.Context, text, _, targetLang string) (Translation, error) {
	s.gotText = text
	s.gotTarget = targetLang
	return s.translation, s.err
}

func (s *stubTranslator) Providers() []string { return []string{"stub"} }

func TestHandleAudioChunkFansOutTranslation(t *testing.T) {
	signaling := newSignalingService()
	alice := joinRoom(signaling, "r1", "a", "Alice")
	bob := joinRoom(signaling, "r1", "b", "Bob")
	drainEvents(alice)
	drainEvents(bob)

	transcriber := &stubTranscriber{transcript: Transcript{
		Text:       "ola mundo",
		Language:   "pt",
		Confidence: 0.92,
		Provider:   "stub",
	}}
	translator := &stubTranslator{translation: Translation{
		TranslatedText: "hello world",
		Provider:       "stub",
	}}
	pipeline := NewPipelineService(signaling, transcriber, translator, "en", testLogger())

	pipeline.HandleAudioChunk(context.Background(), alice, []byte{1, 2, 3})

	assert.Equal(t, []byte{1, 2, 3}, transcriber.gotAudio)
	assert.Equal(t, "ola mundo", translator.gotText)
	assert.Equal(t, "en", translator.gotTarget)

	// The speaker gets the transcription back, not the translation.
	events := drainEvents(alice)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTranscription, events[0].Type)
	assert.Equal(t, "ola mundo", events[0].Payload["text"])

	// Everyone else gets the translated text.
	events = drainEvents(bob)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTranslatedText, events[0].Type)
	assert.Equal(t, "a", events[0].From)
	assert.Equal(t, "hello world", events[0].Payload["translatedText"])
	assert.Equal(t, "ola mundo", events[0].Payload["originalText"])
}

func TestHandleAudioChunkIgnoresEmptyInput(t *testing.T) {
	signaling := newSignalingService()
	alice := joinRoom(signaling, "r1", "a", "Alice")
	drainEvents(alice)

	transcriber := &stubTranscriber{}
	pipeline := NewPipelineService(signaling, transcriber, &stubTranslator{}, "en", testLogger())

	pipeline.HandleAudioChunk(context.Background(), alice, nil)
	assert.Nil(t, transcriber.gotAudio)

	loner := domain.NewClient(nil)
	pipeline.HandleAudioChunk(context.Background(), loner, []byte{1})
	assert.Nil(t, transcriber.gotAudio)

	assert.Empty(t, drainEvents(alice))
}

func TestHandleAudioChunkDropsOnProviderFailure(t *testing.T) {
	signaling := newSignalingService()
	alice := joinRoom(signaling, "r1", "a", "Alice")
	bob := joinRoom(signaling, "r1", "b", "Bob")
	drainEvents(alice)
	drainEvents(bob)

	pipeline := NewPipelineService(signaling,
		&stubTranscriber{err: errors.New("provider down")},
		&stubTranslator{}, "en", testLogger())
	pipeline.HandleAudioChunk(context.Background(), alice, []byte{1})
	assert.Empty(t, drainEvents(alice))
	assert.Empty(t, drainEvents(bob))

	// A translation failure keeps the transcription but drops the
	// broadcast.
	pipeline = NewPipelineService(signaling,
		&stubTranscriber{transcript: Transcript{Text: "hi", Language: "en"}},
		&stubTranslator{err: errors.New("provider down")}, "pt", testLogger())
	pipeline.HandleAudioChunk(context.Background(), alice, []byte{1})

	events := drainEvents(alice)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTranscription, events[0].Type)
	assert.Empty(t, drainEvents(bob))
}

func TestEchoTranslatorTagsTargetLanguage(t *testing.T) {
	tr, err := EchoTranslator{}.Translate(context.Background(), "hello", "en", "pt")
	require.NoError(t, err)
	assert.Equal(t, "[PT] hello", tr.TranslatedText)
	assert.Equal(t, "echo", tr.Provider)
}

func TestDisabledTranscriberAcknowledges(t *testing.T) {
	out, err := DisabledTranscriber{}.Transcribe(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "Audio received (transcription disabled)", out.Text)
	assert.Equal(t, "disabled", out.Provider)
}
