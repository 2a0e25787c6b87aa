package app

import (
	"context"
	"fmt"

	"github.com/doeshing/cmdgate/internal/application/doctor"
	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/infrastructure/audit"
	"github.com/doeshing/cmdgate/internal/infrastructure/classify"
	"github.com/doeshing/cmdgate/internal/infrastructure/config"
	contextcollector "github.com/doeshing/cmdgate/internal/infrastructure/context"
	"github.com/doeshing/cmdgate/internal/infrastructure/events"
	"github.com/doeshing/cmdgate/internal/infrastructure/extract"
	"github.com/doeshing/cmdgate/internal/infrastructure/impact"
	"github.com/doeshing/cmdgate/internal/infrastructure/policy"
	"github.com/doeshing/cmdgate/internal/infrastructure/sandbox"
	"github.com/doeshing/cmdgate/internal/pkg/filesystem"
	"github.com/doeshing/cmdgate/internal/pkg/logger"
	"github.com/doeshing/cmdgate/internal/ports"
	"github.com/doeshing/cmdgate/internal/services"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Pipeline      *services.Pipeline
	ConfigLoader  *config.FileLoader
	Classifier    *classify.Classifier
	DoctorService *doctor.Service
	AuditStore    ports.AuditRepository
	Events        *events.Publisher
	Logger        ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	extractor := extract.NewExtractor(cfg.Security.ProtectedPaths, filesystem.UserHomeDir())

	// An invalid rules file aborts construction; substituting the built-in
	// rules would silently weaken the configured policy.
	classifier, err := classify.NewClassifier(cfg.Security.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load classification rules: %w", err)
	}

	auditStore, err := buildAuditStore(cfg)
	if err != nil {
		return nil, err
	}

	publisher := events.NewPublisher()

	pipeline := &services.Pipeline{
		ConfigProvider:   cfgLoader,
		ContextCollector: contextcollector.NewBasicCollector(),
		Extractor:        extractor,
		Classifier:       classifier,
		Estimator:        impact.NewEstimator(),
		Policy:           policy.NewGate(),
		Sandbox:          sandbox.NewRunner(cfg.Sandbox, log),
		Audit:            auditStore,
		Events:           publisher,
		Logger:           log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Classifier:     classifier,
		Extractor:      extractor,
		Sandbox:        pipeline.Sandbox,
		Audit:          auditStore,
	}

	return &Container{
		Pipeline:      pipeline,
		ConfigLoader:  cfgLoader,
		Classifier:    classifier,
		DoctorService: doctorService,
		AuditStore:    auditStore,
		Events:        publisher,
		Logger:        log,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() error {
	c.Events.Close()
	return c.AuditStore.Close()
}

func buildAuditStore(cfg domain.Config) (ports.AuditRepository, error) {
	switch cfg.AuditBackend() {
	case domain.AuditBackendJSONL:
		store, err := audit.NewFileStore(cfg.Audit.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.AuditBackendSQLite:
		store, err := audit.NewSQLiteStore(cfg.Audit.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown audit backend %q", cfg.Audit.Backend)
	}
}
