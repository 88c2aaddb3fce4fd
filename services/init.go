package services

import (
	"github.com/inboxpilot/docsort/config"
	"github.com/inboxpilot/docsort/interfaces"
	"github.com/inboxpilot/docsort/internal/logger"
	"github.com/inboxpilot/docsort/internal/repository"
	"github.com/inboxpilot/docsort/services/classifier"
	"github.com/inboxpilot/docsort/services/extractor"
	"github.com/inboxpilot/docsort/services/imap"
	"github.com/inboxpilot/docsort/services/ledger"
	"github.com/inboxpilot/docsort/services/namer"
	"github.com/inboxpilot/docsort/services/organizer"
	"github.com/inboxpilot/docsort/services/pipeline"
)

type Services struct {
	MessageSource       interfaces.MessageSource
	HashLedger          interfaces.HashLedger
	AttachmentExtractor interfaces.AttachmentExtractor
	Classifier          interfaces.Classifier
	FilenameSynthesizer interfaces.FilenameSynthesizer
	Organizer           interfaces.Organizer
	PipelineService     interfaces.PipelineService
}

func InitServices(cfg *config.Config, rules *config.Rules, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	hashLedger := ledger.NewFileLedger(cfg.FilingConfig.LedgerPath, log)

	policy := extractor.NewPolicy(cfg.FilingConfig.AllowedExtensions, cfg.FilingConfig.MaxAttachmentSizeMB)

	services := Services{
		MessageSource:       imap.NewIMAPSource(cfg.IMAPConfig, log),
		HashLedger:          hashLedger,
		AttachmentExtractor: extractor.NewExtractorService(policy, hashLedger, log),
		Classifier:          classifier.NewClassifierService(rules.Rules),
		FilenameSynthesizer: namer.NewNamerService(log),
		Organizer:           organizer.NewOrganizerService(rules.DestinationTree(cfg.FilingConfig.DownloadDir), log),
	}

	services.PipelineService = pipeline.NewPipelineService(
		services.MessageSource,
		services.AttachmentExtractor,
		services.Classifier,
		services.FilenameSynthesizer,
		services.Organizer,
		services.HashLedger,
		repos.FileRecordRepository,
		rules.Keywords(),
		log,
	)

	return &services, nil
}
