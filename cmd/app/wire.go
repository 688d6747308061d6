//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/civiclens/councilscribe/internal/bootstrap"
	"github.com/civiclens/councilscribe/internal/domain/pipeline"
	"github.com/civiclens/councilscribe/internal/domain/summarize"
	"github.com/civiclens/councilscribe/internal/infra/config"
	"github.com/civiclens/councilscribe/internal/infra/llm/openai"
	httpiface "github.com/civiclens/councilscribe/internal/interface/http"
	"github.com/civiclens/councilscribe/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideStyles,
		provideTokenCounter,
		provideChunker,
		provideBackendClient,
		provideRepositories,
		provideMeetingRepository,
		provideLegislationRepository,
		provideDocumentRepository,
		provideSummaryRepository,
		provideBlobStorage,
		provideExtractor,
		provideSummaryCache,
		summarize.NewService,
		pipeline.NewService,
		wire.Bind(new(summarize.BackendClient), new(*openai.Client)),
		wire.Bind(new(pipeline.Folder), new(*summarize.Service)),
		provideHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
