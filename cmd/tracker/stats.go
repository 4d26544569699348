package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/statistics"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
	"github.com/spf13/cobra"
)

var (
	statsUser      string
	statsStartDate string
	statsEndDate   string
	statsCompany   string
	statsStatus    string
	statsLimit     int
	statsYear      int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a user's statistics as JSON",
	Long:  `Compute one of the statistics views for a user directly against the database and print it as JSON.`,
}

// statsView is one stats subcommand: it computes a view with the engine.
type statsView func(ctx context.Context, engine *statistics.Engine, userID uuid.UUID) (any, error)

func newStatsCommand(use, short string, view statsView) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, view)
		},
	}
}

// filteredView adapts an engine method that takes the date, company and
// status filters.
func filteredView[T any](view func(*statistics.Engine, context.Context, uuid.UUID, *types.StatisticsFilters) (T, error)) statsView {
	return func(ctx context.Context, engine *statistics.Engine, userID uuid.UUID) (any, error) {
		filters, err := statsFilters()
		if err != nil {
			return nil, err
		}
		return view(engine, ctx, userID, filters)
	}
}

func init() {
	overviewCmd := newStatsCommand("overview", "Counts and rates across all positions",
		filteredView((*statistics.Engine).Overview))
	timelineCmd := newStatsCommand("timeline", "Monthly application and interview series",
		filteredView((*statistics.Engine).Timeline))
	companiesCmd := newStatsCommand("companies", "Per-company breakdown",
		filteredView((*statistics.Engine).Companies))
	for _, c := range []*cobra.Command{overviewCmd, timelineCmd, companiesCmd} {
		c.Flags().StringVar(&statsStartDate, "start-date", "", "Only positions applied on or after this date (YYYY-MM-DD)")
		c.Flags().StringVar(&statsEndDate, "end-date", "", "Only positions applied on or before this date (YYYY-MM-DD)")
		c.Flags().StringVar(&statsCompany, "company", "", "Only companies whose name contains this text")
		c.Flags().StringVar(&statsStatus, "status", "", "Only positions with this status")
	}

	successCmd := newStatsCommand("success-rates", "Conversion rates between pipeline stages",
		func(ctx context.Context, e *statistics.Engine, userID uuid.UUID) (any, error) {
			return e.SuccessRates(ctx, userID)
		})

	topCmd := newStatsCommand("top-companies", "Companies ranked by offer rate",
		func(ctx context.Context, e *statistics.Engine, userID uuid.UUID) (any, error) {
			if statsLimit < 1 || statsLimit > 100 {
				return nil, fmt.Errorf("--limit must be between 1 and 100, got %d", statsLimit)
			}
			return e.TopCompanies(ctx, userID, statsLimit)
		})
	topCmd.Flags().IntVar(&statsLimit, "limit", 10, "Number of companies to list")

	monthlyCmd := newStatsCommand("monthly", "Month-by-month breakdown of one year",
		func(ctx context.Context, e *statistics.Engine, userID uuid.UUID) (any, error) {
			if statsYear < 1900 || statsYear > 2100 {
				return nil, fmt.Errorf("--year must be between 1900 and 2100, got %d", statsYear)
			}
			return e.Monthly(ctx, userID, statsYear)
		})
	monthlyCmd.Flags().IntVar(&statsYear, "year", time.Now().UTC().Year(), "Year to report")

	companyCmd := &cobra.Command{
		Use:   "company <name>",
		Short: "Positions and interviews at one company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, func(ctx context.Context, e *statistics.Engine, userID uuid.UUID) (any, error) {
				return e.CompanyDetails(ctx, userID, args[0])
			})
		},
	}

	statsCmd.PersistentFlags().StringVar(&statsUser, "user", "", "User ID or account email (required)")
	if err := statsCmd.MarkPersistentFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
	}

	statsCmd.AddCommand(overviewCmd, timelineCmd, companiesCmd, successCmd, topCmd, monthlyCmd, companyCmd)
	rootCmd.AddCommand(statsCmd)
}

// statsFilters builds the filters for the overview, timeline and companies views.
func statsFilters() (*types.StatisticsFilters, error) {
	filters := &types.StatisticsFilters{Company: strings.TrimSpace(statsCompany)}
	if statsStartDate != "" {
		d, err := types.ParseDate(statsStartDate)
		if err != nil {
			return nil, fmt.Errorf("--start-date: %w", err)
		}
		filters.StartDate = &d
	}
	if statsEndDate != "" {
		d, err := types.ParseDate(statsEndDate)
		if err != nil {
			return nil, fmt.Errorf("--end-date: %w", err)
		}
		filters.EndDate = &d
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(filters.EndDate.Time) {
		return nil, fmt.Errorf("--start-date must not be after --end-date")
	}
	if statsStatus != "" {
		status := types.PositionStatus(strings.ToLower(statsStatus))
		if !status.Valid() {
			return nil, fmt.Errorf("--status: unknown position status %q", statsStatus)
		}
		filters.Status = status
	}
	return filters, nil
}

func runStats(cmd *cobra.Command, view statsView) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	userID, err := resolveUser(ctx, database, statsUser)
	if err != nil {
		return err
	}

	result, err := view(ctx, statistics.NewEngine(database), userID)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}
