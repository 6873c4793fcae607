// Package main provides the interactive fiction binary: a stdin/stdout
// command loop over a loaded world, with optional AI content expansion and
// session persistence.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/config"
	"github.com/lantern-engine/lantern/internal/expand"
	expandanthropic "github.com/lantern-engine/lantern/internal/expand/anthropic"
	"github.com/lantern-engine/lantern/internal/game/command"
	"github.com/lantern-engine/lantern/internal/game/score"
	"github.com/lantern-engine/lantern/internal/game/state"
	"github.com/lantern-engine/lantern/internal/observability"
	"github.com/lantern-engine/lantern/internal/scripting"
	"github.com/lantern-engine/lantern/internal/server"
	"github.com/lantern-engine/lantern/internal/storage/postgres"
	"github.com/lantern-engine/lantern/internal/world"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	worldDir := flag.String("world", "", "world YAML directory (overrides config)")
	scriptDir := flag.String("scripts", "", "interaction script directory; empty = config value")
	sessionID := flag.String("session", "", "session UUID for persistence; empty = new session")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *worldDir != "" {
		cfg.Game.WorldDir = *worldDir
	}
	if *scriptDir != "" {
		cfg.Game.ScriptDir = *scriptDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Load world
	worldStart := time.Now()
	regions, err := world.LoadRegionsFromDir(cfg.Game.WorldDir)
	if err != nil {
		logger.Fatal("loading world", zap.Error(err))
	}
	graph, err := world.NewGraph(regions)
	if err != nil {
		logger.Fatal("building world graph", zap.Error(err))
	}
	if err := graph.ValidateExits(); err != nil {
		logger.Fatal("validating world exits", zap.Error(err))
	}
	logger.Info("world loaded",
		zap.Int("regions", graph.RegionCount()),
		zap.Int("scenes", graph.SceneCount()),
		zap.Int("items", graph.ItemCount()),
		zap.Duration("elapsed", time.Since(worldStart)),
	)

	gameState, err := newGameState(graph, cfg.Game.StartScene)
	if err != nil {
		logger.Fatal("creating game state", zap.Error(err))
	}
	scoring, err := score.NewEngine(graph, logger)
	if err != nil {
		logger.Fatal("creating scoring engine", zap.Error(err))
	}

	var opts []command.Option

	// Interaction scripts
	if cfg.Game.ScriptDir != "" {
		scripts, err := scripting.NewManager(logger)
		if err != nil {
			logger.Fatal("creating script manager", zap.Error(err))
		}
		if err := scripts.LoadDir(cfg.Game.ScriptDir, 0); err != nil {
			logger.Fatal("loading interaction scripts", zap.Error(err))
		}
		defer scripts.Close()
		opts = append(opts, command.WithInteractor(scripts))
	}

	// AI expansion
	var cache *expand.Cache
	if cfg.Expansion.Provider == "anthropic" {
		provider, err := expandanthropic.NewProvider(
			os.Getenv("ANTHROPIC_API_KEY"),
			cfg.Expansion.Model,
			int64(cfg.Expansion.MaxTokens),
			logger,
		)
		if err != nil {
			logger.Fatal("creating anthropic provider", zap.Error(err))
		}
		cacheOpts := []expand.CacheOption{expand.WithTimeout(cfg.Expansion.Timeout)}
		if !cfg.Expansion.Preload {
			cacheOpts = append(cacheOpts, expand.WithoutPreload())
		}
		cache, err = expand.NewCache(provider, graph, logger, cfg.Expansion.Style, cacheOpts...)
		if err != nil {
			logger.Fatal("creating expansion cache", zap.Error(err))
		}
		opts = append(opts, command.WithExpander(cache))
	}

	// Session persistence
	var store *postgres.SessionStore
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)

		id := uuid.New()
		if *sessionID != "" {
			id, err = uuid.Parse(*sessionID)
			if err != nil {
				logger.Fatal("parsing session id", zap.Error(err))
			}
		}
		logger.Info("session", zap.String("id", id.String()))
		store = postgres.NewSessionStore(postgres.NewSessionRepository(pool.DB()), id)
		opts = append(opts, command.WithSnapshotStore(store))
	}

	interp, err := command.NewInterpreter(graph, gameState, scoring, logger, opts...)
	if err != nil {
		logger.Fatal("creating interpreter", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("repl", &replService{
		interp: interp,
		in:     os.Stdin,
		out:    os.Stdout,
	})
	if cache != nil {
		stopCh := make(chan struct{})
		lifecycle.Add("expansion", &server.FuncService{
			StartFn: func() error { <-stopCh; return nil },
			StopFn: func() {
				close(stopCh)
				cache.Flush()
			},
		})
	}
	if store != nil {
		stopCh := make(chan struct{})
		lifecycle.Add("autosave", &server.FuncService{
			StartFn: func() error { <-stopCh; return nil },
			StopFn: func() {
				close(stopCh)
				saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				snapshot, err := interp.State().Snapshot()
				if err == nil {
					err = store.SaveSnapshot(saveCtx, snapshot)
				}
				if err != nil {
					logger.Warn("autosave on shutdown failed", zap.Error(err))
				}
			},
		})
	}

	logger.Info("ready", zap.Duration("startup", time.Since(start)))
	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("run", zap.Error(err))
	}
}

func newGameState(graph *world.Graph, startScene string) (*state.State, error) {
	if startScene != "" {
		return state.NewAt(graph, startScene)
	}
	return state.New(graph)
}

// replService reads player commands line by line and prints results.
type replService struct {
	interp *command.Interpreter
	in     io.Reader
	out    io.Writer
}

func (r *replService) Start() error {
	welcome := r.interp.Welcome()
	r.print(welcome)

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		result := r.interp.Process(context.Background(), scanner.Text())
		r.print(result)
		if result.Quit {
			return nil
		}
	}
}

func (r *replService) Stop() {}

func (r *replService) print(result command.Result) {
	fmt.Fprintln(r.out, result.Message)
	if result.ScoreChange > 0 {
		fmt.Fprintf(r.out, "[Your score has just gone up by %d points.]\n", result.ScoreChange)
	}
	fmt.Fprintln(r.out)
}
