package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pion/webrtc/v3"

	"github.com/immxrtalbeast/lingualink/internal/config"
	"github.com/immxrtalbeast/lingualink/internal/domain"
	"github.com/immxrtalbeast/lingualink/internal/rtc"
	"github.com/immxrtalbeast/lingualink/lib/logger/sl"
)

// Headless signaling client: joins a room, keeps peer links converged
// with its membership and prints what the room says. Useful for load
// checks and for debugging the negotiation path without a browser.
func main() {
	servers := flag.String("servers", "ws://localhost:8080/ws", "comma-separated signaling endpoints")
	roomID := flag.String("room", "lobby", "room to join")
	name := flag.String("name", "", "display name")
	id := flag.String("id", "", "participant id, generated when empty")

	_ = godotenv.Load(".env")
	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	local := domain.Participant{ID: *id, Name: *name}
	if local.ID == "" {
		local.ID = uuid.New().String()
	}
	if local.Name == "" {
		short := local.ID
		if len(short) > 8 {
			short = short[:8]
		}
		local.Name = "headless-" + short
	}

	sessions := rtc.NewPionSessionFactory(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: cfg.WebRTC.STUNServers}},
	})
	policy := rtc.ReconnectPolicy{
		BaseDelay:   cfg.Signaling.ReconnectBaseDelay,
		MaxDelay:    cfg.Signaling.ReconnectMaxDelay,
		MaxAttempts: cfg.Signaling.ReconnectMaxAttempts,
	}

	client := rtc.NewClient(
		local,
		*roomID,
		strings.Split(*servers, ","),
		policy,
		sessions,
		cfg.Signaling.ICERecoveryWindow,
		log,
	)
	client.Links().OnPeerGone = func(remoteID string) {
		log.Info("peer gone", slog.String("remote_id", remoteID))
	}
	client.OnEvent = func(ev domain.Event) {
		switch ev.Type {
		case domain.EventChat:
			log.Info("chat", slog.String("from", ev.From), slog.Any("payload", ev.Payload))
		case domain.EventTranslatedText:
			log.Info("translated", slog.String("from", ev.From), slog.Any("payload", ev.Payload))
		default:
			log.Debug("event", slog.String("type", string(ev.Type)))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("joining room",
		slog.String("room_id", *roomID),
		slog.String("participant_id", local.ID),
	)

	err := client.Run(ctx)
	switch {
	case errors.Is(err, rtc.ErrGaveUp):
		log.Error("all endpoints exhausted")
		os.Exit(1)
	case errors.Is(err, context.Canceled):
		client.Leave()
		log.Info("stopped")
	case err != nil:
		log.Error("client stopped", sl.Err(err))
		os.Exit(1)
	}
}
