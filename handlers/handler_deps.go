package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	supa "github.com/supabase-community/supabase-go"

	"candletime/api-gateway/internal/adminauth"
	"candletime/api-gateway/internal/jobs"
	"candletime/api-gateway/internal/worker"
)

// GeneratorClient defines the operations handlers expect from the AI
// client. This allows for decoupling and easier testing; the concrete
// implementation lives in internal/aiclient.
type GeneratorClient interface {
	GenerateArticle(ctx context.Context, prompt string) (string, error)
}

// ProviderFactory builds an identity provider scoped to a request's bearer
// token, for the client-facing admin access check.
type ProviderFactory func(token string) adminauth.IdentityProvider

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger          *logrus.Logger
	DB              *supa.Client
	Generator       GeneratorClient
	Dispatcher      *worker.Dispatcher
	Jobs            *jobs.Store
	AdminAllowList  string
	ProviderFactory ProviderFactory
}

// NewApplicationHandler creates an ApplicationHandler with the given dependencies.
func NewApplicationHandler(
	logger *logrus.Logger,
	dbClient *supa.Client,
	generator GeneratorClient,
	dispatcher *worker.Dispatcher,
	jobStore *jobs.Store,
	adminAllowList string,
	providerFactory ProviderFactory,
) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:          logger,
		DB:              dbClient,
		Generator:       generator,
		Dispatcher:      dispatcher,
		Jobs:            jobStore,
		AdminAllowList:  adminAllowList,
		ProviderFactory: providerFactory,
	}
}
