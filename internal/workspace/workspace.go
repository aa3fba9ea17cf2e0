// Package workspace assembles one execution context: the stores and the
// session gate of a single running back office, sharing durable slots and a
// change feed with any other context.
package workspace

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"goldengate/internal/feed"
	"goldengate/internal/repos"
	"goldengate/internal/services"
)

type Workspace struct {
	Origin    string
	Inventory *services.InventoryService
	Financing *services.FinancingService
	Gate      *services.Gate
	Dashboard *services.DashboardService
	Reports   *services.ReportService

	log *zap.Logger

	mu      sync.Mutex
	cancels []func()
}

type Options struct {
	Slots       repos.SlotStore
	Feed        feed.Notifier
	Credentials []services.Credential
	Logger      *zap.Logger
}

func New(opts Options) (*Workspace, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	creds := opts.Credentials
	if creds == nil {
		creds = services.DefaultCredentials
	}
	origin := uuid.NewString()
	logger = logger.With(zap.String("origin", origin))

	gate, err := services.NewGate(opts.Slots, creds, logger.Named("gate"))
	if err != nil {
		return nil, err
	}

	b := services.Backing{Slots: opts.Slots, Feed: opts.Feed, Origin: origin}
	invB := b
	invB.Logger = logger.Named("inventory")
	finB := b
	finB.Logger = logger.Named("financing")

	inv := services.NewInventoryService(invB)
	fin := services.NewFinancingService(finB)

	return &Workspace{
		Origin:    origin,
		Inventory: inv,
		Financing: fin,
		Gate:      gate,
		Dashboard: services.NewDashboardService(inv, fin),
		Reports:   services.NewReportService(inv, fin),
		log:       logger,
	}, nil
}

// Open reads the session, starts following changes other contexts make to
// both collections, then loads them. Following first means a write landing
// between the read and the subscription is not missed.
func (w *Workspace) Open(ctx context.Context) error {
	if err := w.Gate.Boot(ctx); err != nil {
		return err
	}

	for _, watch := range []func() (func(), error){w.Inventory.Items.Watch, w.Financing.Records.Watch} {
		cancel, err := watch()
		if err != nil {
			w.Close()
			return err
		}
		w.mu.Lock()
		w.cancels = append(w.cancels, cancel)
		w.mu.Unlock()
	}

	if _, err := w.Inventory.Load(ctx); err != nil {
		w.Close()
		return err
	}
	if _, err := w.Financing.Load(ctx); err != nil {
		w.Close()
		return err
	}
	w.log.Info("workspace open", zap.String("session", w.Gate.State().String()))
	return nil
}

// Close stops following external changes.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.cancels {
		c()
	}
	w.cancels = nil
}
