package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
	"github.com/jackc/pgx/v5"
)

// Paging defaults for position listings.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	MaxPage        = 100000
)

// positionSortColumns whitelists the columns a listing may be ordered by.
var positionSortColumns = map[string]string{
	"application_date": "application_date",
	"created_at":       "created_at",
	"updated_at":       "updated_at",
	"company":          "company",
	"title":            "title",
	"status":           "status",
}

// IsPositionSortColumn reports whether positions can be listed ordered by name.
func IsPositionSortColumn(name string) bool {
	_, ok := positionSortColumns[name]
	return ok
}

const positionColumns = `id, user_id, title, company, COALESCE(description, ''),
	COALESCE(location, ''), COALESCE(salary_range, ''), status::text,
	application_date, created_at, updated_at`

func scanPosition(row pgx.Row) (*types.Position, error) {
	var p types.Position
	var status string
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Company, &p.Description,
		&p.Location, &p.SalaryRange, &status, &p.ApplicationDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = types.PositionStatus(status)
	return &p, nil
}

func collectPositions(rows pgx.Rows) ([]types.Position, error) {
	defer rows.Close()

	positions := []types.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}
	return positions, nil
}

// CreatePosition stores a new position for userID. Status defaults to applied.
func (db *DB) CreatePosition(ctx context.Context, userID uuid.UUID, req *types.CreatePositionRequest) (*types.Position, error) {
	status := req.Status
	if status == "" {
		status = types.StatusApplied
	}
	var applied types.Date
	if req.ApplicationDate != nil {
		applied = *req.ApplicationDate
	}

	p, err := scanPosition(db.pool.QueryRow(ctx,
		`INSERT INTO positions (user_id, title, company, description, location, salary_range, status, application_date)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7::position_status, $8)
		 RETURNING `+positionColumns,
		userID, req.Title, req.Company, req.Description, req.Location, req.SalaryRange, string(status), applied,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create position: %w", err)
	}
	return p, nil
}

// GetPosition retrieves one of userID's positions; nil when it does not exist or belongs to someone else
func (db *DB) GetPosition(ctx context.Context, userID, id uuid.UUID) (*types.Position, error) {
	p, err := scanPosition(db.pool.QueryRow(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return p, nil
}

// UpdatePosition writes every editable field of p; nil when p is not userID's
func (db *DB) UpdatePosition(ctx context.Context, userID uuid.UUID, p *types.Position) (*types.Position, error) {
	updated, err := scanPosition(db.pool.QueryRow(ctx,
		`UPDATE positions
		 SET title = $1, company = $2, description = NULLIF($3, ''), location = NULLIF($4, ''),
		     salary_range = NULLIF($5, ''), status = $6::position_status, application_date = $7
		 WHERE id = $8 AND user_id = $9
		 RETURNING `+positionColumns,
		p.Title, p.Company, p.Description, p.Location, p.SalaryRange, string(p.Status), p.ApplicationDate,
		p.ID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update position: %w", err)
	}
	return updated, nil
}

// DeletePosition removes a position and, by cascade, its interviews
func (db *DB) DeletePosition(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM positions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// statisticsFilterWhere scopes positions to userID and applies the statistics filters.
func statisticsFilterWhere(userID uuid.UUID, filters *types.StatisticsFilters) *whereBuilder {
	w := &whereBuilder{}
	w.add("user_id = ?", userID)
	if filters == nil {
		return w
	}
	if filters.StartDate != nil {
		w.add("application_date >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		w.add("application_date <= ?", *filters.EndDate)
	}
	if filters.Company != "" {
		w.add("company ILIKE ?", containsPattern(filters.Company))
	}
	if filters.Status != "" {
		w.add("status = ?::position_status", string(filters.Status))
	}
	return w
}

// ListPositions returns userID's positions narrowed by filters, oldest application first.
func (db *DB) ListPositions(ctx context.Context, userID uuid.UUID, filters *types.StatisticsFilters) ([]types.Position, error) {
	w := statisticsFilterWhere(userID, filters)
	query := fmt.Sprintf(
		`SELECT %s FROM positions %s ORDER BY application_date ASC, created_at ASC, id ASC`,
		positionColumns, w.clause(),
	)

	rows, err := db.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return collectPositions(rows)
}

// normalizePaging clamps page and per-page into their valid ranges.
func normalizePaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// positionOrderBy returns a safe ORDER BY clause; unknown columns fall back to application_date.
func positionOrderBy(sortBy, sortOrder string) string {
	column, ok := positionSortColumns[sortBy]
	if !ok {
		column = "application_date"
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", column, direction, direction)
}

func positionListWhere(userID uuid.UUID, opts types.PositionListOptions) *whereBuilder {
	w := &whereBuilder{}
	w.add("user_id = ?", userID)
	if opts.Status != "" {
		w.add("status = ?::position_status", string(opts.Status))
	}
	if opts.Company != "" {
		w.add("company ILIKE ?", containsPattern(opts.Company))
	}
	if opts.DateFrom != nil {
		w.add("application_date >= ?", *opts.DateFrom)
	}
	if opts.DateTo != nil {
		w.add("application_date <= ?", *opts.DateTo)
	}
	if opts.Search != "" {
		pattern := containsPattern(opts.Search)
		w.add("(title ILIKE ? OR company ILIKE ? OR description ILIKE ?)", pattern, pattern, pattern)
	}
	return w
}

// ListPositionsPage returns one page of userID's positions and the total number matching.
func (db *DB) ListPositionsPage(ctx context.Context, userID uuid.UUID, opts types.PositionListOptions) ([]types.Position, int, error) {
	page, perPage := normalizePaging(opts.Page, opts.PerPage)
	w := positionListWhere(userID, opts)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM positions %s", w.clause())
	if err := db.pool.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count positions: %w", err)
	}

	where := w.clause()
	limit := w.next(perPage)
	offset := w.next((page - 1) * perPage)
	query := fmt.Sprintf(
		`SELECT %s FROM positions %s %s LIMIT %s OFFSET %s`,
		positionColumns, where, positionOrderBy(opts.SortBy, opts.SortOrder), limit, offset,
	)

	rows, err := db.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list positions: %w", err)
	}
	positions, err := collectPositions(rows)
	if err != nil {
		return nil, 0, err
	}
	return positions, total, nil
}
