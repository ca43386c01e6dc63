package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/corpus/filesystem"
	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/runtime/browser"
	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/runtime/native"
	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/sink/elastic"
	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/sink/kafka"
	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/sink/sqlite"
	"github.com/custodia-labs/docere-indexer/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docere-indexer/internal/core/ports/driven"
	"github.com/custodia-labs/docere-indexer/internal/core/services"
	"github.com/custodia-labs/docere-indexer/internal/logger"
	"github.com/custodia-labs/docere-indexer/internal/metrics"
)

// wire builds the application from settings. It is the composition root:
// the config resolver and session pool are created once here and shared by
// every service. The index sink is only created for commands that write.
func wire(withSink bool) error {
	settings, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settingsStore = settings

	logger.Configure(logger.Options{
		Level: settings.GetString("log.level"),
		JSON:  settings.GetBool("log.json"),
	})
	logger.SetVerbose(verbose)

	dir := projectsDir
	if dir == "" {
		dir = settings.GetString("projects.dir")
	}
	logger.Debug("Projects directory: %s", dir)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	corpus := filesystem.New(dir)
	resolver := services.NewConfigResolver(file.NewProjectLoader(dir), m)
	pool := services.NewSessionPool(m,
		native.New(native.NewRegistry()),
		browser.New(browser.Config{
			RemoteURL: settings.GetString("browser.remote_url"),
			Bin:       settings.GetString("browser.bin"),
		}),
	)
	pipeline := services.NewPipeline(m)

	schemas := services.NewSchemaEngine(resolver, pool, pipeline, corpus, m)
	extraction := services.NewExtractionService(resolver, pool, pipeline, corpus)

	metricsRegistry = reg
	projectService = services.NewProjectService(resolver, corpus)
	schemaService = schemas
	extractionService = extraction
	shutdown = pool.Shutdown

	if !withSink {
		return nil
	}

	sink, err := newSink(settings)
	if err != nil {
		return err
	}
	indexService = services.NewIndexer(schemas, extraction, corpus, sink, m, services.IndexOptions{
		Concurrency: settings.GetInt("index.concurrency"),
		RateLimit:   settings.GetFloat("index.rate_limit"),
	})
	shutdown = func() error {
		return errors.Join(pool.Shutdown(), sink.Close())
	}
	return nil
}

// newSink creates the index sink selected by sink.type.
func newSink(settings driven.ConfigStore) (driven.IndexSink, error) {
	switch typ := strings.ToLower(settings.GetString("sink.type")); typ {
	case "sqlite":
		return sqlite.NewStore(settings.GetString("sink.sqlite.dir"))
	case "elastic", "elasticsearch":
		return elastic.New(elastic.Config{
			Addresses:   settings.GetStringSlice("sink.elastic.addresses"),
			IndexPrefix: settings.GetString("sink.elastic.index_prefix"),
		})
	case "kafka":
		return kafka.New(kafka.Config{
			Brokers: settings.GetStringSlice("sink.kafka.brokers"),
			Topic:   settings.GetString("sink.kafka.topic"),
		})
	case "memory":
		return memory.NewIndexSink(), nil
	default:
		return nil, fmt.Errorf("unknown sink type %q", typ)
	}
}
