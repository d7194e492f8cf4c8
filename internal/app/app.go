package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mapl11/fantasy-cricket/external/fantasyfeed"
	"github.com/mapl11/fantasy-cricket/internal/config"
	"github.com/mapl11/fantasy-cricket/internal/domain/performance"
	"github.com/mapl11/fantasy-cricket/internal/domain/permanentteam"
	"github.com/mapl11/fantasy-cricket/internal/domain/queue"
	"github.com/mapl11/fantasy-cricket/internal/domain/scoring"
	"github.com/mapl11/fantasy-cricket/internal/domain/user"
	"github.com/mapl11/fantasy-cricket/internal/infrastructure/account"
	"github.com/mapl11/fantasy-cricket/internal/infrastructure/notify"
	"github.com/mapl11/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/mapl11/fantasy-cricket/internal/infrastructure/repository/postgres"
	"github.com/mapl11/fantasy-cricket/internal/interfaces/httpapi"
	idgen "github.com/mapl11/fantasy-cricket/internal/platform/id"
	"github.com/mapl11/fantasy-cricket/internal/platform/logging"
	"github.com/mapl11/fantasy-cricket/internal/usecase"
)

// NewHTTPServer wires the full service: repositories, scoring source, event
// hub, use cases, and the HTTP router. The returned cleanup releases the hub
// and database; call it after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var (
		userRepo  user.Repository
		queueRepo queue.Repository
		teamRepo  permanentteam.Repository
		formation permanentteam.FormationStore
		perfRepo  performance.Repository
		scores    scoring.Source
		closeDB   func() error
	)

	if cfg.DBURL != "" {
		db, err := openDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}

		userRepo = postgres.NewUserRepository(db)
		queueRepo = postgres.NewQueueRepository(db)
		teamRepo = postgres.NewTeamRepository(db)
		formation = postgres.NewFormationStore(db)
		perfRepo = postgres.NewPerformanceRepository(db)
		scores = fantasyfeed.NewClient(
			&http.Client{Timeout: cfg.FantasyFeedTimeout},
			cfg.FantasyFeedBaseURL,
			cfg.FantasyFeedAPIKey,
			logger,
		)
		closeDB = db.Close

		logger.Info("storage configured", "backend", "postgres", "database", dbNameFromURL(cfg.DBURL))
	} else {
		users := memory.NewUserRepository(memory.SeedUsers())
		queues := memory.NewQueueRepository()
		teams := memory.NewTeamRepository(nil)

		userRepo = users
		queueRepo = queues
		teamRepo = teams
		formation = memory.NewFormationStore(teams, queues, users)
		perfRepo = memory.NewPerformanceRepository()
		scores = memory.NewScoreSource()

		logger.Info("storage configured", "backend", "memory")
	}

	hub := notify.NewWebSocketHub(logger)
	generator := idgen.NewRandomGenerator()

	queueSvc := usecase.NewQueueService(
		queueRepo,
		teamRepo,
		formation,
		userRepo,
		hub,
		generator,
		logger,
		cfg.TeamSize,
	)
	teamSvc := usecase.NewTeamService(teamRepo, userRepo, perfRepo)
	scoringSvc := usecase.NewTeamScoringService(
		teamRepo,
		perfRepo,
		userRepo,
		scores,
		hub,
		generator,
		logger,
		usecase.TeamScoringServiceConfig{
			Policy:          cfg.ScoringPolicy,
			Bracket:         cfg.MatchBracket,
			FixtureWinBonus: cfg.FixtureWinBonus,
			RankTiers:       cfg.RankBonusTiers,
			SweepWorkers:    cfg.SweepWorkers,
		},
	)

	verifier := account.NewClient(
		&http.Client{Timeout: cfg.AccountsTimeout},
		cfg.AccountsBaseURL,
		cfg.AccountsIntrospectPath,
		cfg.AccountsAPIKey,
		logger,
	)

	handler := httpapi.NewHandler(queueSvc, teamSvc, scoringSvc, hub, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		if closeDB != nil {
			_ = closeDB()
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func(context.Context) error {
		hub.Shutdown()
		if closeDB != nil {
			return closeDB()
		}
		return nil
	}

	return server, cleanup, nil
}
