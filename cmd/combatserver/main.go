// Package main runs the combat HTTP server: the stateless round tick, the
// roll service, battle sessions and their websocket feeds.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/config"
	"github.com/cory-johannsen/duskfall/internal/game/battle"
	"github.com/cory-johannsen/duskfall/internal/game/condition"
	"github.com/cory-johannsen/duskfall/internal/game/dice"
	"github.com/cory-johannsen/duskfall/internal/gameserver"
	"github.com/cory-johannsen/duskfall/internal/observability"
	"github.com/cory-johannsen/duskfall/internal/server"
	"github.com/cory-johannsen/duskfall/internal/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file (empty for defaults and environment)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting duskfall combat server",
		zap.String("mode", cfg.Server.Mode),
	)

	conditions, err := condition.LoadDirectory(cfg.Combat.ConditionsDir)
	if err != nil {
		logger.Fatal("loading conditions", zap.Error(err))
	}
	logger.Info("conditions loaded",
		zap.String("dir", cfg.Combat.ConditionsDir),
		zap.Int("count", len(conditions.All())),
	)

	hub := ws.NewHub(cfg.Combat.WSWriteTimeout, logger.Named("ws"))
	battles := battle.NewManager(conditions, logger.Named("battle"),
		battle.WithMaxBattles(cfg.Combat.MaxBattles),
		battle.WithRetention(cfg.Combat.FinishedRetention),
		battle.WithRoundListener(gameserver.RoundPublisher(hub, logger.Named("feed"))),
		battle.WithEndListener(gameserver.TopicCloser(hub, logger.Named("feed"))),
	)

	gin.SetMode(cfg.Server.Mode)
	handler := gameserver.NewHandler(battles, hub, dice.NewCryptoSource(), logger.Named("http"))
	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      gameserver.NewRouter(handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("http", &server.HTTPService{
		Server:          httpServer,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.HTTP.Addr()),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
