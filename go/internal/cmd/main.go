package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/playmesh/matchsync/go/clients/authority_client"
	"github.com/playmesh/matchsync/go/internal/gateway"
	"github.com/playmesh/matchsync/go/internal/invite"
	"github.com/playmesh/matchsync/go/internal/match/coordinator"
	"github.com/playmesh/matchsync/go/internal/match/feed"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	authority := authority_client.NewAuthorityClient(cfg.Authority.BaseURL, cfg.Authority.APIKey)

	feedCfg := feed.DefaultConfig()
	if cfg.Nats.URL != "" {
		feedCfg.URL = cfg.Nats.URL
	}
	pushFeed, err := feed.Connect(feedCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect push channel")
	}
	defer pushFeed.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go cm.Start(ctx)

	wsHandler := gateway.NewWebSocketHandler(cm)
	server := setupServer(wsHandler)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("gateway server failed")
		}
	}()

	prompter := newGatewayPrompter(cm, cfg.Session.SelfID)

	inviteCoord := invite.New(authority, pushFeed, prompter, prompter, cfg.Session.SelfID, invite.DefaultConfig())
	if err := inviteCoord.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start invite coordinator")
	}
	defer inviteCoord.Close()

	matchCoord := coordinator.New(
		authority,
		pushFeed,
		cfg.Session.SelfID,
		cfg.Session.OpponentID,
		cfg.Session.RoomID,
		coordinator.DefaultConfig(),
	)
	matchCoord.SetStateListener(func(view coordinator.StateView) {
		cm.BroadcastToRoom(cfg.Session.RoomID, newEvent(cfg.Session.RoomID, gateway.EventTypeState, gateway.StatePayload{
			Session:      view.Snapshot,
			RemainingSec: view.Remaining.Seconds(),
			LocalScore:   view.LocalScore,
			Host:         view.Host,
			TimeUp:       view.TimeUp,
		}))
	})
	if err := matchCoord.Attach(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to attach match coordinator")
	}
	defer matchCoord.Close()

	go dispatchClientMessages(ctx, cm, matchCoord, prompter)

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("gateway shutdown failed")
	}
}

// dispatchClientMessages routes UI commands into the coordinators.
func dispatchClientMessages(ctx context.Context, cm *gateway.ConnectionManager, matchCoord *coordinator.Coordinator, prompter *gatewayPrompter) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-cm.Inbound():
			switch msg.Type {
			case gateway.ClientTypeScoreDelta:
				var p gateway.ScoreDeltaPayload
				if err := json.Unmarshal(msg.Data, &p); err != nil {
					log.Debug().Err(err).Msg("dropping malformed score delta")
					continue
				}
				matchCoord.ApplyDelta(p.Amount)

			case gateway.ClientTypeInviteResponse:
				var p gateway.InviteResponsePayload
				if err := json.Unmarshal(msg.Data, &p); err != nil {
					log.Debug().Err(err).Msg("dropping malformed invite response")
					continue
				}
				prompter.Resolve(p.InviteID, p.Accepted)

			default:
				log.Debug().Str("type", msg.Type).Msg("ignoring unknown client message")
			}
		}
	}
}
