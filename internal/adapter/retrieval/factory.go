package retrieval

import (
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/intake/internal/config"
	"github.com/xiaot623/gogo/intake/internal/metrics"
)

// NewRetriever builds the retriever selected by cfg.Mode.
// INTAKE_MODE=MOCK returns a MockClient; otherwise a real Client.
func NewRetriever(cfg *config.Config, log logrus.FieldLogger, m *metrics.Metrics) Retriever {
	if cfg.Mode == config.ModeMock {
		log.Info("INTAKE_MODE=MOCK detected, using mock retrieval client")
		return NewMockClient()
	}
	return NewClient(cfg.VectorDBURL, cfg.VectorDBAPIKey, cfg.RetrievalTimeout, log, m)
}
