package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/inboxpilot/docsort/config"
	"github.com/inboxpilot/docsort/internal/database"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/repository"
	"github.com/inboxpilot/docsort/internal/tracing"
	"github.com/inboxpilot/docsort/server"
	"github.com/inboxpilot/docsort/services"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Config initialization failed: %v", err)
	}
	if cfg == nil {
		log.Fatalf("config is empty")
	}

	// Setup the database
	db, err := database.InitDocsortDatabase(&database.DatabaseConfig{
		Path: cfg.DatabaseConfig.Path,
	})
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}

	switch os.Args[1] {
	case "migrate":

		err := repository.MigrateDB(db)
		if err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		log.Println("Database migration completed successfully")

	case "sweep":

		if err := runSweep(cfg, db); err != nil {
			log.Fatalf("Sweep failed: %v", err)
		}

	case "server":

		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Docsort starting up...")

		srv, err := server.NewServer(cfg, db)
		if err != nil {
			log.Fatalf("Server setup failed: %v", err)
		}

		err = srv.Run()
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}

		log.Println("Shutdown complete")

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// runSweep performs one mailbox sweep and exits, for use from shells and
// external schedulers.
func runSweep(cfg *config.Config, db *gorm.DB) error {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		return err
	}
	defer closer.Close()
	opentracing.SetGlobalTracer(tracer)

	repos := repository.InitRepositories(db)

	rules, err := config.LoadRules(cfg.FilingConfig.RulesFile)
	if err != nil {
		return err
	}

	svcs, err := services.InitServices(cfg, rules, appLogger, repos)
	if err != nil {
		return err
	}

	summary, err := svcs.PipelineService.Sweep(context.Background())
	if err != nil {
		return err
	}

	log.Printf("Sweep %s done: %d filed, %d failed", summary.RunID, summary.AttachmentsFiled, summary.AttachmentsFailed)
	return nil
}

func printUsage() {
	fmt.Println("Usage: docsort <command>")
	fmt.Println("Commands:")
	fmt.Println("  migrate   Run database migrations")
	fmt.Println("  sweep     Run a single mailbox sweep and exit")
	fmt.Println("  server    Start the application server")
}
