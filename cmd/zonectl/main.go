// Package main provides zonectl, the batch entry point for the zone
// analytics pipeline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-zone-analytics/internal/app"
	"github.com/noah-isme/sma-zone-analytics/internal/dto"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
	"github.com/noah-isme/sma-zone-analytics/pkg/cache"
	"github.com/noah-isme/sma-zone-analytics/pkg/config"
	"github.com/noah-isme/sma-zone-analytics/pkg/database"
	"github.com/noah-isme/sma-zone-analytics/pkg/logger"
)

type admittedLister interface {
	ListAdmitted(ctx context.Context) ([]models.Student, error)
}

type batchValidator interface {
	ValidateBatch(ctx context.Context, studentIDs []string) (*dto.PrerequisiteBatchReport, error)
}

type unassignedAssigner interface {
	AssignAllUnassignedStudents(ctx context.Context) (*dto.BatchAssignmentReport, error)
}

type analyticsCalculator interface {
	CalculateForStudent(ctx context.Context, studentID, academicYear string, trigger models.CalculationTrigger) (*models.StudentAnalytics, error)
	CalculateAllStudentAnalytics(ctx context.Context, academicYear string) (*dto.CalculationBatchReport, error)
}

type statisticsGenerator interface {
	GenerateOverallStatistics(ctx context.Context, academicYear string) (*models.ZoneStatistics, error)
	GenerateSubjectStatistics(ctx context.Context, subjectName, academicYear string) (*models.ZoneStatistics, error)
	RefreshAllStatistics(ctx context.Context, academicYear string) (*models.RefreshSummary, error)
}

type pipelineRunner interface {
	Run(ctx context.Context, academicYear string) (*models.RecomputeSummary, error)
}

// toolkit is the set of services the subcommands drive.
type toolkit struct {
	students   admittedLister
	validator  batchValidator
	assigner   unassignedAssigner
	calculator analyticsCalculator
	statistics statisticsGenerator
	pipeline   pipelineRunner
}

// opener builds a toolkit and returns a cleanup to run once the command ends.
type opener func(ctx context.Context) (*toolkit, func(), error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(openServices)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func openServices(_ context.Context) (*toolkit, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, cache invalidation skipped", zap.Error(err))
		redisClient = nil
	}

	container := app.New(cfg, db, redisClient, logr)
	cleanup := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = db.Close()
		_ = logr.Sync()
	}
	return &toolkit{
		students:   container.Students,
		validator:  container.Prerequisite,
		assigner:   container.Assignment,
		calculator: container.Analytics,
		statistics: container.Aggregation,
		pipeline:   container.Recompute,
	}, cleanup, nil
}

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "zonectl",
		Short:         "Run zone analytics batch jobs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newValidateCmd(open))
	rootCmd.AddCommand(newAssignClassesCmd(open))
	rootCmd.AddCommand(newCalculateCmd(open))
	rootCmd.AddCommand(newAggregateCmd(open))
	rootCmd.AddCommand(newRefreshCmd(open))
	rootCmd.AddCommand(newRecomputeCmd(open))

	return rootCmd
}

// withToolkit opens the services around run.
func withToolkit(open opener, run func(cmd *cobra.Command, args []string, tk *toolkit) (interface{}, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		tk, cleanup, err := open(cmd.Context())
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}
		result, err := run(cmd, args, tk)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	}
}

func printJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func requireYear(cmd *cobra.Command) {
	cmd.Flags().String("year", "", "academic year, e.g. 2024-2025")
	_ = cmd.MarkFlagRequired("year")
}

func newValidateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [studentId...]",
		Short: "Validate prerequisites and auto-fix missing classes",
		Long:  "Validates the given students, or every fully admitted student when none are given.",
		RunE: withToolkit(open, func(cmd *cobra.Command, args []string, tk *toolkit) (interface{}, error) {
			ids := args
			if len(ids) == 0 {
				students, err := tk.students.ListAdmitted(cmd.Context())
				if err != nil {
					return nil, fmt.Errorf("list admitted students: %w", err)
				}
				for _, student := range students {
					ids = append(ids, student.ID)
				}
			}
			return tk.validator.ValidateBatch(cmd.Context(), ids)
		}),
	}
}

func newAssignClassesCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "assign-classes",
		Short: "Assign every admitted student without a class",
		Args:  cobra.NoArgs,
		RunE: withToolkit(open, func(cmd *cobra.Command, _ []string, tk *toolkit) (interface{}, error) {
			return tk.assigner.AssignAllUnassignedStudents(cmd.Context())
		}),
	}
}

func newCalculateCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate student analytics for a year",
		Args:  cobra.NoArgs,
		RunE: withToolkit(open, func(cmd *cobra.Command, _ []string, tk *toolkit) (interface{}, error) {
			year, _ := cmd.Flags().GetString("year")
			studentID, _ := cmd.Flags().GetString("student")
			if studentID != "" {
				return tk.calculator.CalculateForStudent(cmd.Context(), studentID, year, models.TriggerManual)
			}
			return tk.calculator.CalculateAllStudentAnalytics(cmd.Context(), year)
		}),
	}
	requireYear(cmd)
	cmd.Flags().String("student", "", "recalculate only this student")
	return cmd
}

func newAggregateCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Generate overall or single-subject zone statistics",
		Args:  cobra.NoArgs,
		RunE: withToolkit(open, func(cmd *cobra.Command, _ []string, tk *toolkit) (interface{}, error) {
			year, _ := cmd.Flags().GetString("year")
			subject, _ := cmd.Flags().GetString("subject")
			if subject != "" {
				return tk.statistics.GenerateSubjectStatistics(cmd.Context(), subject, year)
			}
			return tk.statistics.GenerateOverallStatistics(cmd.Context(), year)
		}),
	}
	requireYear(cmd)
	cmd.Flags().String("subject", "", "aggregate this subject instead of overall")
	return cmd
}

func newRefreshCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Regenerate overall and every subject's statistics",
		Args:  cobra.NoArgs,
		RunE: withToolkit(open, func(cmd *cobra.Command, _ []string, tk *toolkit) (interface{}, error) {
			year, _ := cmd.Flags().GetString("year")
			return tk.statistics.RefreshAllStatistics(cmd.Context(), year)
		}),
	}
	requireYear(cmd)
	return cmd
}

func newRecomputeCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Run validate, calculate and refresh in one pass",
		Args:  cobra.NoArgs,
		RunE: withToolkit(open, func(cmd *cobra.Command, _ []string, tk *toolkit) (interface{}, error) {
			year, _ := cmd.Flags().GetString("year")
			return tk.pipeline.Run(cmd.Context(), year)
		}),
	}
	requireYear(cmd)
	return cmd
}
