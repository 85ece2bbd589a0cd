package whatsapp

import (
	"context"
	"errors"
	"testing"
)

type stubChecker struct {
	configured bool
	err        error
	calls      int
}

func (s *stubChecker) Configured() bool { return s.configured }
func (s *stubChecker) CheckToken(context.Context) error {
	s.calls++
	return s.err
}

type stubTextSender struct {
	err   error
	calls int
	to    string
	body  string
}

func (s *stubTextSender) SendText(_ context.Context, to, body string) (*SendResponse, error) {
	s.calls++
	s.to, s.body = to, body
	if s.err != nil {
		return nil, s.err
	}
	return &SendResponse{}, nil
}

func TestTokenGuardValidate(t *testing.T) {
	checker := &stubChecker{configured: true}
	guard := NewTokenGuard(checker, nil)
	if guard.Valid() {
		t.Fatal("guard must start invalid")
	}
	if !guard.Validate(context.Background()) || !guard.Valid() {
		t.Fatal("expected valid after successful check")
	}

	checker.err = &APIError{Code: 190}
	if guard.Validate(context.Background()) || guard.Valid() {
		t.Fatal("expected invalid after failed check")
	}

	unconfigured := &stubChecker{}
	g2 := NewTokenGuard(unconfigured, nil)
	if g2.Validate(context.Background()) {
		t.Fatal("unconfigured credentials must not validate")
	}
	if unconfigured.calls != 0 {
		t.Fatal("unconfigured guard must not call the API")
	}
}

func TestSenderSkipsWhileInvalid(t *testing.T) {
	client := &stubTextSender{}
	guard := NewTokenGuard(&stubChecker{}, nil)
	s := NewSender(client, guard, nil, nil)

	if err := s.SendText(context.Background(), "9198", "hi"); !errors.Is(err, ErrSendSkipped) {
		t.Fatalf("expected ErrSendSkipped, got %v", err)
	}
	if client.calls != 0 {
		t.Fatal("send must be skipped")
	}
}

func TestSenderFlipsGuardOnAuthError(t *testing.T) {
	client := &stubTextSender{err: &APIError{Code: 190, StatusCode: 401, Message: "Error validating access token"}}
	checker := &stubChecker{configured: true}
	guard := NewTokenGuard(checker, nil)
	guard.Validate(context.Background())
	s := NewSender(client, guard, nil, nil)

	err := s.SendText(context.Background(), "9198", "hi")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if guard.Valid() {
		t.Fatal("guard should be invalid after auth failure")
	}
	if err := s.SendText(context.Background(), "9198", "again"); !errors.Is(err, ErrSendSkipped) {
		t.Fatalf("expected skip after flip, got %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", client.calls)
	}

	// Periodic revalidation re-arms sends.
	client.err = nil
	guard.Validate(context.Background())
	if err := s.SendText(context.Background(), "9198", "back"); err != nil {
		t.Fatalf("expected send after revalidation, got %v", err)
	}
}

func TestSenderKeepsGuardOnOtherErrors(t *testing.T) {
	client := &stubTextSender{err: &APIError{Code: 131026, StatusCode: 400}}
	guard := NewTokenGuard(&stubChecker{configured: true}, nil)
	guard.Validate(context.Background())
	s := NewSender(client, guard, nil, nil)

	if err := s.SendText(context.Background(), "9198", "hi"); err == nil || errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected plain error, got %v", err)
	}
	if !guard.Valid() {
		t.Fatal("non-auth errors must not flip the guard")
	}
}
