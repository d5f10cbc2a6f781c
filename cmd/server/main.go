package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/czrobotics/scorehost/internal/bracket"
	"github.com/czrobotics/scorehost/internal/config"
	"github.com/czrobotics/scorehost/internal/directory"
	"github.com/czrobotics/scorehost/internal/engine"
	"github.com/czrobotics/scorehost/internal/httpapi"
	"github.com/czrobotics/scorehost/internal/room"
	"github.com/czrobotics/scorehost/internal/ws"
	"github.com/czrobotics/scorehost/pkg/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	tokens := bracket.NewTokenPair(cfg.AuthBaseURL, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI)
	if cfg.AccessToken != "" || cfg.RefreshToken != "" {
		tokens.SetTokens(cfg.AccessToken, cfg.RefreshToken)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	client := bracket.NewHTTPClient(cfg.APIBaseURL, tokens, limiter, logger)

	participants := directory.NewParticipants()
	usernames := directory.NewUsernames()

	eng := engine.New(ctx, client, participants, cfg.TournamentID, logger)

	rm := room.New(ctx, func() types.ServerMessage {
		return types.ServerMessage{Event: types.EventSnapshot, Matches: eng.Matches()}
	}, logger)

	handler := httpapi.SetupRoutes(
		&httpapi.Handlers{Engine: eng, Room: rm, Tokens: tokens, Log: logger},
		ws.Deps{Engine: eng, Room: rm, Usernames: usernames, Log: logger},
	)

	logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("tournament", cfg.TournamentID))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
