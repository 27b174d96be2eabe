package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

type fakeSender struct {
	name   string
	err    error
	titles []string
}

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	f.titles = append(f.titles, title)
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNotifyFiltersByEvent(t *testing.T) {
	s := &fakeSender{name: "telegram"}
	n := NewNotifier([]Sender{s}, []string{"alert_new"}, testLogger())
	ctx := context.Background()

	if err := n.Notify(ctx, "alert_new", "cluster", "body"); err != nil {
		t.Fatal(err)
	}
	if err := n.Notify(ctx, "alert_update", "update", "body"); err != nil {
		t.Fatal(err)
	}

	if len(s.titles) != 1 || s.titles[0] != "cluster" {
		t.Errorf("only allowed events should be delivered, got %v", s.titles)
	}
}

func TestNotifyEmptyEventListAllowsAll(t *testing.T) {
	s := &fakeSender{name: "discord"}
	n := NewNotifier([]Sender{s}, nil, testLogger())

	n.Notify(context.Background(), "anything", "title", "body")
	if len(s.titles) != 1 {
		t.Error("an empty event list must allow every event")
	}
}

func TestDispatchContinuesPastFailingSender(t *testing.T) {
	failing := &fakeSender{name: "telegram", err: errors.New("api down")}
	healthy := &fakeSender{name: "discord"}
	n := NewNotifier([]Sender{failing, healthy}, nil, testLogger())

	err := n.NotifyAll(context.Background(), "title", "body")
	if err == nil {
		t.Fatal("expected the failing sender's error to surface")
	}
	if len(healthy.titles) != 1 {
		t.Error("a failing sender must not block the others")
	}
}

func TestNoSendersIsANoOp(t *testing.T) {
	n := NewNotifier(nil, nil, testLogger())
	if err := n.NotifyAll(context.Background(), "title", "body"); err != nil {
		t.Errorf("no senders should mean no error, got %v", err)
	}
}
