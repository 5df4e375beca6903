// Package container provides dependency injection for the mpr-recon application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/mpr-recon/internal/aggregate"
	"fjacquet/mpr-recon/internal/config"
	"fjacquet/mpr-recon/internal/logging"
	"fjacquet/mpr-recon/internal/pipeline"
	"fjacquet/mpr-recon/internal/reconciler"
	"fjacquet/mpr-recon/internal/report"
	"fjacquet/mpr-recon/internal/source"
	"fjacquet/mpr-recon/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. All fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	loader     *source.Loader
	store      store.ProfileRepository
	engine     *reconciler.Engine
	aggregator *aggregate.Aggregator
	pipeline   *pipeline.Pipeline
	generator  *report.Generator
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	loader, err := source.NewLoader(cfg.Input.Encoding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create input loader: %w", err)
	}

	profileStore := store.NewProfileStore(cfg.Profiles.File, logger)

	engine := reconciler.NewEngine(reconciler.Options{
		Tolerance: cfg.Tolerance(),
		OneToOne:  cfg.Recon.OneToOne,
	}, logger)
	aggregator := aggregate.NewAggregator(logger)

	p := pipeline.New(pipeline.Config{
		Delimiter:   cfg.Delimiter(),
		PreviewRows: cfg.Output.PreviewRows,
	}, engine, aggregator, logger)

	generator := report.NewGenerator(logger, cfg.Delimiter())

	logger.Debug("Container initialized successfully",
		logging.F("tolerance", cfg.Tolerance().String()),
		logging.F("one_to_one", cfg.Recon.OneToOne),
		logging.F("encoding", loader.Encoding()))

	return &Container{
		logger:     logger,
		config:     cfg,
		loader:     loader,
		store:      profileStore,
		engine:     engine,
		aggregator: aggregator,
		pipeline:   p,
		generator:  generator,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLoader returns the input file loader.
func (c *Container) GetLoader() *source.Loader {
	return c.loader
}

// GetStore returns the mapping profile repository.
func (c *Container) GetStore() store.ProfileRepository {
	return c.store
}

// GetEngine returns the reconciliation engine.
func (c *Container) GetEngine() *reconciler.Engine {
	return c.engine
}

// GetPipeline returns the staged reconciliation pipeline.
func (c *Container) GetPipeline() *pipeline.Pipeline {
	return c.pipeline
}

// PipelineWith returns a pipeline sharing the container's collaborators but
// reconciling with opts, for runs that override the configured matching.
func (c *Container) PipelineWith(opts reconciler.Options) *pipeline.Pipeline {
	engine := reconciler.NewEngine(opts, c.logger)
	return pipeline.New(pipeline.Config{
		Delimiter:   c.config.Delimiter(),
		PreviewRows: c.config.Output.PreviewRows,
	}, engine, c.aggregator, c.logger)
}

// GetGenerator returns the report generator.
func (c *Container) GetGenerator() *report.Generator {
	return c.generator
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
