package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/knucklebones-backend/internal/auth"
	"github.com/rocketscienceinc/knucklebones-backend/internal/board"
	"github.com/rocketscienceinc/knucklebones-backend/internal/config"
	"github.com/rocketscienceinc/knucklebones-backend/internal/referee"
	"github.com/rocketscienceinc/knucklebones-backend/internal/replica"
	"github.com/rocketscienceinc/knucklebones-backend/internal/repository"
	"github.com/rocketscienceinc/knucklebones-backend/internal/repository/storage"
	"github.com/rocketscienceinc/knucklebones-backend/internal/usecase"
	"github.com/rocketscienceinc/knucklebones-backend/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	rules, err := loadRules(conf)
	if err != nil {
		return err
	}

	setupSigner, err := loadSetupSigner(log, conf.SetupKey)
	if err != nil {
		return err
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	matchRepo := repository.NewMatchRepository(sqliteStorage.Connection)
	moveLogRepo := repository.NewMoveLogRepository(redisStorage.Connection)
	leaderboardRepo := repository.NewLeaderboardRepository(redisStorage.Connection)

	gameReferee := referee.New(logger, rules, setupSigner.Public())
	matchManager := usecase.NewMatchManager(logger, setupSigner, gameReferee, matchRepo, moveLogRepo, leaderboardRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.New(logger, conf.HTTPPort, matchManager).Start(ctx); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func loadRules(conf *config.Config) (replica.Rules, error) {
	displacement, err := board.ParseDisplacement(conf.Rules.Displacement)
	if err != nil {
		return replica.Rules{}, fmt.Errorf("invalid rules: %w", err)
	}

	return replica.Rules{
		Width:        conf.Board.Width,
		Height:       conf.Board.Height,
		Displacement: displacement,
	}, nil
}

// loadSetupSigner falls back to a throwaway key, so setups issued before a restart stop verifying.
func loadSetupSigner(log *slog.Logger, encoded string) (*auth.KeySigner, error) {
	if encoded == "" {
		signer, err := auth.GenerateKeySigner()
		if err != nil {
			return nil, fmt.Errorf("could not generate setup key: %w", err)
		}

		log.Warn("no setup key configured, using an ephemeral one", "public_key", auth.EncodeKey(signer.Public()))

		return signer, nil
	}

	key, err := auth.ParsePrivateKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid setup key: %w", err)
	}

	return auth.NewKeySigner(key), nil
}
