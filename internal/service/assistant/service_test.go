package assistant

import (
	"context"
	"errors"
	"testing"
)

type stubClient struct {
	reply string
	err   error
}

func (s *stubClient) GenerateContent(_ context.Context, _ string) (string, error) {
	return s.reply, s.err
}

func TestAskReturnsUpstreamReply(t *testing.T) {
	svc := NewService(&stubClient{reply: "Collectors can approve all data."}, nil)

	got := svc.Ask(context.Background(), "Who can approve data?")
	if got != "Collectors can approve all data." {
		t.Fatalf("Ask = %q", got)
	}
}

func TestAskContainsUpstreamFailure(t *testing.T) {
	svc := NewService(&stubClient{err: errors.New("connection refused")}, nil)

	got := svc.Ask(context.Background(), "Who can approve data?")
	if got != FallbackReply {
		t.Fatalf("Ask = %q, want fallback", got)
	}
}

func TestAskWithoutClient(t *testing.T) {
	svc := NewService(nil, nil)

	if got := svc.Ask(context.Background(), "hello"); got != FallbackReply {
		t.Fatalf("Ask = %q, want fallback", got)
	}
}
