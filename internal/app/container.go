// Package app wires repositories and services for the API server and the
// batch CLI.
package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-zone-analytics/internal/repository"
	"github.com/noah-isme/sma-zone-analytics/internal/service"
	"github.com/noah-isme/sma-zone-analytics/pkg/config"
	"github.com/noah-isme/sma-zone-analytics/pkg/jobs"
)

// Container holds the services shared by the entry points.
type Container struct {
	Metrics      *service.MetricsService
	Cache        *service.CacheService
	Prerequisite *service.PrerequisiteService
	Assignment   *service.ClassAssignmentService
	Analytics    *service.StudentAnalyticsService
	Aggregation  *service.ZoneAggregationService
	Query        *service.ZoneQueryService
	Recompute    *service.RecomputeService
	Auth         *service.AuthService
	Students     *repository.StudentRepository

	queue *jobs.Queue
}

// New builds the service graph. redisClient may be nil, in which case queries
// run uncached.
func New(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := service.NewMetricsService()

	students := repository.NewStudentRepository(db)
	classes := repository.NewClassRepository(db)
	results := repository.NewTestResultRepository(db)
	analytics := repository.NewStudentAnalyticsRepository(db)
	statistics := repository.NewZoneStatisticsRepository(db)
	recomputeJobs := repository.NewRecomputeJobRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logger)
	}
	cache := service.NewCacheService(cacheRepo, metrics, cfg.Zones.CacheTTL, logger, cfg.Zones.CacheEnabled)

	assignment := service.NewClassAssignmentService(students, classes, cfg.Zones.ClassCapacity, logger)
	prerequisite := service.NewPrerequisiteService(students, assignment, logger)
	calculator := service.NewStudentAnalyticsService(students, classes, results, analytics, prerequisite, cache, metrics, service.StudentAnalyticsConfig{
		BatchSize:    cfg.Zones.BatchSize,
		HistoryLimit: cfg.Zones.HistoryLimit,
	}, logger)
	aggregation := service.NewZoneAggregationService(analytics, classes, statistics, cache, metrics, logger)
	query := service.NewZoneQueryService(statistics, analytics, students, cache, metrics, logger)
	recompute := service.NewRecomputeService(recomputeJobs, students, prerequisite, calculator, aggregation, metrics, logger)

	queue := jobs.NewQueue(service.RecomputeJobType, recompute.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Zones.RecomputeWorkers,
		BufferSize: 8,
		MaxRetries: cfg.Zones.RecomputeRetries,
		RetryDelay: 5 * time.Second,
		OnGiveUp:   recompute.MarkFailed,
		Logger:     logger,
	})
	recompute.AttachQueue(queue)

	return &Container{
		Metrics:      metrics,
		Cache:        cache,
		Prerequisite: prerequisite,
		Assignment:   assignment,
		Analytics:    calculator,
		Aggregation:  aggregation,
		Query:        query,
		Recompute:    recompute,
		Auth:         service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret}, logger),
		Students:     students,
		queue:        queue,
	}
}

// StartWorkers runs the recompute queue until ctx is cancelled or Stop is called.
func (c *Container) StartWorkers(ctx context.Context) {
	c.queue.Start(ctx)
}

// Stop drains the recompute workers.
func (c *Container) Stop() {
	c.queue.Stop()
}
