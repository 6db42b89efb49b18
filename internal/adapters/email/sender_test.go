package email

import (
	"context"
	"errors"
	"testing"

	domain "playbook/internal/domain/email"
)

var (
	_ Sender = (*ResendSender)(nil)
	_ Sender = (*NoopSender)(nil)
	_ Sender = FailingSender{}
)

func TestNoopSender_Records(t *testing.T) {
	s := NewNoopSender()
	id, err := s.Send(context.Background(), domain.Message{To: "a@b.com", Subject: "one"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "noop-1" {
		t.Errorf("id = %q", id)
	}
	s.Send(context.Background(), domain.Message{To: "c@d.com", Subject: "two"})

	sent := s.Sent()
	if len(sent) != 2 || sent[1].Subject != "two" {
		t.Fatalf("Sent() = %+v", sent)
	}
	sent[0].Subject = "mutated"
	if s.Sent()[0].Subject != "one" {
		t.Error("Sent() must return a copy")
	}
}

func TestFailingSender(t *testing.T) {
	boom := errors.New("provider down")
	if _, err := (FailingSender{Err: boom}).Send(context.Background(), domain.Message{}); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}
