package bootstrap

import (
	"fmt"

	"ai-knowledge-router-be/internal/config"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/internal/repository/memory"
	"ai-knowledge-router-be/internal/repository/unitofwork"
	"ai-knowledge-router-be/pkg/embedding"
	"ai-knowledge-router-be/pkg/llm/factory"
	"ai-knowledge-router-be/pkg/rag/citation"
	"ai-knowledge-router-be/pkg/rag/composer"
	"ai-knowledge-router-be/pkg/rag/contextualizer"
	"ai-knowledge-router-be/pkg/rag/dialogue"
	"ai-knowledge-router-be/pkg/rag/executor"
	"ai-knowledge-router-be/pkg/rag/grounding"
	"ai-knowledge-router-be/pkg/rag/intent"
	"ai-knowledge-router-be/pkg/rag/orchestrator"
	"ai-knowledge-router-be/pkg/rag/probe"
	"ai-knowledge-router-be/pkg/rag/response"
	ragsearch "ai-knowledge-router-be/pkg/rag/search"
	"ai-knowledge-router-be/pkg/search"
	"ai-knowledge-router-be/pkg/tabular"

	"github.com/redis/go-redis/v9"
)

// PipelineDeps are the infrastructure handles the pipeline can use. A nil
// UowFactory disables the probes that read the database, a nil Redis disables
// the web result cache.
type PipelineDeps struct {
	UowFactory unitofwork.RepositoryFactory
	Redis      *redis.Client
	Logger     logger.ILogger
}

// BuildPipeline wires the six probes behind the executor in their fixed order
func BuildPipeline(cfg *config.Config, deps PipelineDeps) (*executor.PipelineExecutor, error) {
	log := deps.Logger

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
		cfg.Ai.LLMTimeout,
	)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	log.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	routing := cfg.Routing
	generator := response.NewGenerator(llmProvider, log)
	composerSvc := composer.NewComposer(llmProvider, log)
	resolver := dialogue.NewResolver(llmProvider, routing, log)
	agent := tabular.NewAgent(llmProvider, cfg.Search.SpreadsheetDir, log)

	cache := search.NewQueryCache(deps.Redis, search.QueryCacheConfig{
		Enabled: deps.Redis != nil,
		TTL:     cfg.Search.WebCacheTTL,
	}, log)
	web := search.NewWebClient(cfg.Search.WebSearchURL, cfg.Keys.WebSearch, cfg.Search.WebMaxResults, cache, log)
	crawler := search.NewCrawler(cfg.Search.CrawlRatePerSec, cfg.Search.CrawlMaxPages, log)
	site := search.NewCorporateSite(web, crawler, cfg.Search.CorporateDomains, log)

	var catalog *ragsearch.Catalog
	probes := make([]probe.Probe, 0, 6)
	if deps.UowFactory != nil {
		embeddingProvider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		retriever := ragsearch.NewRetriever(embeddingProvider, deps.UowFactory, log)
		catalog = ragsearch.NewCatalog(deps.UowFactory)

		probes = append(probes,
			probe.NewAttachments(retriever, agent, generator, routing.KBTopK, log),
			probe.NewKnowledgeBase(retriever, generator, llmProvider, resolver, composerSvc, routing, log),
			probe.NewTabular(catalog, agent, log),
		)
	} else {
		log.Warn("BOOTSTRAP", "No database, attachment, knowledge base and tabular probes disabled", nil)
	}
	probes = append(probes,
		probe.NewCorporateSite(site, generator, log),
		probe.NewGeneralLLM(generator),
		probe.NewWebSearch(web, generator, log),
	)

	router := orchestrator.NewOrchestrator(
		probes,
		grounding.NewEvaluator(llmProvider, routing.GroundingMode, log),
		citation.NewSelector(routing, log),
		composerSvc,
		resolver,
		routing,
		log,
	)

	var attachments executor.AttachmentLoader
	if catalog != nil {
		attachments = catalog
	}

	return executor.NewPipelineExecutor(
		intent.NewDigester(llmProvider, memory.NewDigestCache(routing.IntentCacheTTL), log),
		resolver,
		contextualizer.NewContextualizer(llmProvider, log),
		composerSvc,
		router,
		attachments,
		log,
	), nil
}

