// Package importer bulk-creates positions and their interviews for one user
// from a schema-validated import document.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/logging"
	"github.com/haimn-support/job-search-tracker-api/internal/schemas"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many positions are written at once.
const DefaultConcurrency = 4

// Store is the subset of the database the importer writes to.
type Store interface {
	CreatePosition(ctx context.Context, userID uuid.UUID, req *types.CreatePositionRequest) (*types.Position, error)
	CreateInterview(ctx context.Context, userID, positionID uuid.UUID, req *types.CreateInterviewRequest) (*types.Interview, error)
}

// Importer writes import documents to a Store.
type Importer struct {
	store       Store
	logger      *zap.Logger
	concurrency int
}

// New creates an Importer. A non-positive concurrency uses DefaultConcurrency.
func New(store Store, logger *zap.Logger, concurrency int) *Importer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Importer{store: store, logger: logger, concurrency: concurrency}
}

// Parse validates raw against the import schema and decodes it.
func Parse(raw []byte) (*types.ImportDocument, error) {
	if err := schemas.ValidateImport(raw); err != nil {
		return nil, err
	}
	var doc types.ImportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode import document: %w", err)
	}
	return &doc, nil
}

// Import creates every position in doc for userID, each followed by its
// interviews. The first failure cancels the positions not yet started; rows
// already written are kept.
func (im *Importer) Import(ctx context.Context, userID uuid.UUID, doc *types.ImportDocument) (types.ImportResult, error) {
	var positions, interviews atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)

	for i := range doc.Positions {
		item := &doc.Positions[i]
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			p, err := im.store.CreatePosition(gCtx, userID, &item.CreatePositionRequest)
			if err != nil {
				return fmt.Errorf("failed to import position %d (%s at %s): %w", i, item.Title, item.Company, err)
			}
			positions.Add(1)

			for j := range item.Interviews {
				iv, err := im.store.CreateInterview(gCtx, userID, p.ID, &item.Interviews[j])
				if err != nil {
					return fmt.Errorf("failed to import interview %d of position %d: %w", j, i, err)
				}
				if iv == nil {
					return fmt.Errorf("failed to import interview %d of position %d: position %s not found", j, i, p.ID)
				}
				interviews.Add(1)
			}

			im.logger.Debug("imported position",
				zap.String("company", item.Company),
				zap.String("title", item.Title),
				zap.Int("interviews", len(item.Interviews)),
			)
			return nil
		})
	}

	err := g.Wait()
	result := types.ImportResult{Positions: int(positions.Load()), Interviews: int(interviews.Load())}
	if err != nil {
		return result, err
	}

	im.logger.Info("import complete",
		zap.Stringer("user_id", userID),
		zap.Int("positions", result.Positions),
		zap.Int("interviews", result.Interviews),
	)
	return result, nil
}
