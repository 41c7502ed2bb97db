//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/docsummarizer/internal/bootstrap"
	"github.com/yanqian/docsummarizer/internal/domain/document"
	"github.com/yanqian/docsummarizer/internal/domain/library"
	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	"github.com/yanqian/docsummarizer/internal/infra/config"
	httpiface "github.com/yanqian/docsummarizer/internal/interface/http"
	"github.com/yanqian/docsummarizer/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSummaryConfig,
		provideLibraryConfig,
		provideDigest,
		provideTokenCounter,
		provideSummaryTokenCounter,
		provideSplitter,
		provideLoader,
		provideModel,
		provideValkeyClient,
		provideSummaryCache,
		provideObjectStorage,
		provideJobQueue,
		provideLibraryJobQueue,
		document.NewIngestor,
		summarizer.NewService,
		library.NewService,
		wire.Bind(new(library.Ingestor), new(*document.Ingestor)),
		wire.Bind(new(httpiface.DocumentLibrary), new(*library.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
