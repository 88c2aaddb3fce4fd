package cron

import (
	"context"
	"os"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/inboxpilot/docsort/config"
	"github.com/inboxpilot/docsort/interfaces"
	cron_config "github.com/inboxpilot/docsort/internal/cron/config"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/tracing"
	"github.com/inboxpilot/docsort/services/pipeline"
)

type CronManager struct {
	cfg      *config.Config
	log      logger.Logger
	cron     *cronv3.Cron
	stopCh   chan struct{}
	jobIDs   map[string]cronv3.EntryID
	pipeline interfaces.PipelineService
}

func NewCronManager(cfg *config.Config, log logger.Logger, pipelineService interfaces.PipelineService) *CronManager {
	return &CronManager{
		cfg:      cfg,
		log:      log,
		stopCh:   make(chan struct{}),
		jobIDs:   make(map[string]cronv3.EntryID),
		pipeline: pipelineService,
	}
}

// Start initializes and starts the cron scheduler
func (cm *CronManager) Start() {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	// Load cron config from environment variables
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	// Register heartbeat job
	if cronConfig.CronScheduleHeartbeat != "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from host: %s", hostname)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	// Register mailbox sweep job
	if cronConfig.CronScheduleSweep != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleSweep, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.runSweep()
		})
		if err != nil {
			cm.log.Fatalf("Could not add sweep cron job: %v", err)
		}
		cm.jobIDs["sweep"] = id
		cm.log.Infof("Registered sweep job with schedule: %s", cronConfig.CronScheduleSweep)
	}
}

func (cm *CronManager) runSweep() {
	cm.log.Info("Running scheduled mailbox sweep")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runSweep")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	summary, err := cm.pipeline.Sweep(ctx)
	if err != nil {
		if err == pipeline.ErrSweepInProgress {
			cm.log.Info("Previous sweep still running, skipping this tick")
			return
		}
		tracing.TraceErr(span, err)
		cm.log.Errorf("Scheduled sweep failed: %v", err)
		return
	}

	cm.log.Infof("Scheduled sweep %s filed %d attachment(s)", summary.RunID, summary.AttachmentsFiled)
}
