//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"rental-orchestrator/internal/pkg/clock"
	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/keylock"
	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/shared"
	"rental-orchestrator/tests/common/memstore"
	sharedmock "rental-orchestrator/tests/mock/shared"

	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"
)

var baseTime = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ctrl     *gomock.Controller
	store    *memstore.Store
	gateway  *sharedmock.MockPaymentGateway
	notifier *sharedmock.MockNotifier
	clock    *clock.MockClock
	cfg      config.Config
	logger   *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &fixture{
		ctrl:     ctrl,
		store:    memstore.New(),
		gateway:  sharedmock.NewMockPaymentGateway(ctrl),
		notifier: sharedmock.NewMockNotifier(ctrl),
		clock:    clock.NewMockClock(baseTime),
		cfg:      config.NewTestConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (f *fixture) balance() commands.BalanceCommands {
	return commands.NewBalanceUseCase(f.store, f.logger)
}

func (f *fixture) lifecycle() commands.HoldCommands {
	return commands.NewHoldLifecycle(f.store, f.gateway, f.notifier, f.balance(), f.clock, f.cfg, f.logger)
}

func (f *fixture) handlers() commands.JobHandlers {
	return commands.NewJobHandlers(f.store, f.gateway, f.notifier, f.balance(), f.clock, f.cfg, f.logger)
}

func (f *fixture) dispatcher() commands.JobCommands {
	return f.dispatcherWith(f.handlers())
}

func (f *fixture) dispatcherWith(h commands.JobHandlers) commands.JobCommands {
	tracer := noop.NewTracerProvider().Tracer("test")
	return commands.NewDispatcher(f.store, h, f.notifier, f.clock, f.cfg, tracer, f.logger)
}

func (f *fixture) reschedule() commands.RescheduleCommands {
	return commands.NewRescheduleUseCase(f.store, f.gateway, f.notifier, keylock.New(), f.clock, f.cfg, f.logger)
}

type outbox struct {
	mu   sync.Mutex
	sent []shared.Notification
}

func (o *outbox) all() []shared.Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.sent)
}

func (o *outbox) ofKind(audience shared.Audience, kind string) []shared.Notification {
	var out []shared.Notification
	for _, n := range o.all() {
		if n.Audience == audience && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// collectNotifications records every notification instead of asserting each call.
func (f *fixture) collectNotifications() *outbox {
	box := &outbox{}
	f.notifier.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n shared.Notification) error {
			box.mu.Lock()
			defer box.mu.Unlock()
			box.sent = append(box.sent, n)
			return nil
		}).AnyTimes()
	return box
}
