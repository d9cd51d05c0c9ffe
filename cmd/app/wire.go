//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/jmorelli/chatdocs/internal/bootstrap"
	"github.com/jmorelli/chatdocs/internal/domain/chat"
	"github.com/jmorelli/chatdocs/internal/domain/docproc"
	"github.com/jmorelli/chatdocs/internal/domain/transcribe"
	"github.com/jmorelli/chatdocs/internal/infra/config"
	"github.com/jmorelli/chatdocs/internal/infra/llm/ollama"
	httpiface "github.com/jmorelli/chatdocs/internal/interface/http"
	"github.com/jmorelli/chatdocs/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideDocprocConfig,
		provideChatConfig,
		provideTranscribeConfig,
		provideOllamaClient,
		provideSTTClient,
		provideThreadStore,
		provideExtractCache,
		provideObjectStore,
		docproc.NewProcessor,
		chat.NewService,
		transcribe.NewService,
		wire.Bind(new(docproc.ChatClient), new(*ollama.Client)),
		wire.Bind(new(chat.ChatClient), new(*ollama.Client)),
		httpiface.NewHandler,
		httpiface.NewDocumentHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
