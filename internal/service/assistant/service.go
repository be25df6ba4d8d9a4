// Package assistant contains the conversational collaborator boundary. The
// upstream call performs the only external I/O in the system; its latency
// and failures stay inside this package and never touch the ledger.
package assistant

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/uzhavar360/backend/pkg/clients/gemini"
)

// FallbackReply is returned whenever the upstream model is unreachable,
// errors out, or is not configured.
const FallbackReply = "The assistant is currently unavailable. Please try again later."

const callTimeout = 20 * time.Second

// Service answers scoped workflow questions, containing upstream failures.
type Service struct {
	client gemini.Client
	logger *zap.Logger
}

// NewService wires the assistant. A nil client means the feature is
// disabled and every prompt receives the fallback reply.
func NewService(client gemini.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Ask forwards a prompt to the model and returns its reply. Failures are
// converted to the fixed fallback string, never propagated.
func (s *Service) Ask(ctx context.Context, prompt string) string {
	if s.client == nil {
		return FallbackReply
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	reply, err := s.client.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn("assistant call failed", zap.Error(err))
		return FallbackReply
	}
	return reply
}
