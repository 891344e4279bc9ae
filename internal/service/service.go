// Package service wires the session store, agents and repositories into the
// operations exposed by the transport layer.
package service

import (
	"github.com/sirupsen/logrus"

	"github.com/xiaot623/gogo/intake/internal/agent"
	"github.com/xiaot623/gogo/intake/internal/metrics"
	"github.com/xiaot623/gogo/intake/internal/policy"
	"github.com/xiaot623/gogo/intake/internal/repository"
	"github.com/xiaot623/gogo/intake/internal/session"
)

type Service struct {
	sessions     *session.Store
	advisor      *agent.AdvisorAgent
	transcripts  repository.TranscriptStore
	patients     repository.PatientStore
	files        repository.FileStorage
	policyEngine *policy.Engine
	log          logrus.FieldLogger
	metrics      *metrics.Metrics
}

func New(sessions *session.Store, advisor *agent.AdvisorAgent, transcripts repository.TranscriptStore, patients repository.PatientStore, files repository.FileStorage, policyEngine *policy.Engine, log logrus.FieldLogger, m *metrics.Metrics) *Service {
	return &Service{
		sessions:     sessions,
		advisor:      advisor,
		transcripts:  transcripts,
		patients:     patients,
		files:        files,
		policyEngine: policyEngine,
		log:          log,
		metrics:      m,
	}
}
