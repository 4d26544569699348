package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/config"
	"github.com/haimn-support/job-search-tracker-api/internal/db"
	"github.com/haimn-support/job-search-tracker-api/internal/logging"
	"go.uber.org/zap"
)

// loadRuntime reads the configuration and builds the logger every command uses.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// connect opens the database named by cfg.
func connect(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

type userLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
}

// resolveUser accepts a user ID or an account email.
func resolveUser(ctx context.Context, users userLookup, ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	if !strings.Contains(ref, "@") {
		return uuid.Nil, fmt.Errorf("invalid user %q: expected a user ID or email", ref)
	}
	user, err := users.GetUserByEmail(ctx, ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return uuid.Nil, fmt.Errorf("no user with email %s", ref)
	}
	return user.ID, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
