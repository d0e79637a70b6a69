// Package jobqueue hosts the in-process background tickers that stand in for
// an external cron: the weekly target close and subscription renewals. The
// tickers only invoke operations the services already expose.
package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/manyinyire/fleetbackend/internal/pkg/database"
	"github.com/manyinyire/fleetbackend/internal/pkg/subscription"
	"github.com/manyinyire/fleetbackend/internal/pkg/weeklytarget"
)

const (
	weeklyCloseInterval = 1 * time.Hour
	renewalInterval     = 1 * time.Hour
)

// Manager manages the background tickers.
type Manager struct {
	weeklyCloseTicker *time.Ticker
	renewalTicker     *time.Ticker
	stopCh            chan struct{}
	wg                sync.WaitGroup
	mu                sync.Mutex
	running           bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global background manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// Start starts the background tickers
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[Jobs] Starting background tickers")

	m.weeklyCloseTicker = time.NewTicker(weeklyCloseInterval)
	m.wg.Add(1)
	go m.weeklyCloseWorker()

	m.renewalTicker = time.NewTicker(renewalInterval)
	m.wg.Add(1)
	go m.renewalWorker()
}

// Stop stops the background tickers and waits for them to finish
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[Jobs] Stopping background tickers")
	close(m.stopCh)
	m.weeklyCloseTicker.Stop()
	m.renewalTicker.Stop()
	m.wg.Wait()
	m.running = false
}

// weeklyCloseWorker closes last week's still-active targets. Closing is
// driven by week-start equality, so running hourly is harmless: once last
// week's rows are closed the scan finds nothing.
func (m *Manager) weeklyCloseWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.weeklyCloseTicker.C:
			svc := weeklytarget.NewServiceFromDB(database.GetDB())
			closed, err := svc.CloseLastWeek(context.Background())
			if err != nil {
				log.Errorw("[Jobs] weekly close failed", "error", err)
				continue
			}
			if len(closed) > 0 {
				log.Infow("[Jobs] weekly close finished", "closed", len(closed))
			}
		case <-m.stopCh:
			return
		}
	}
}

// renewalWorker renews subscriptions whose period has ended and still have
// auto-renew enabled. Tenants that disabled auto-renew are skipped; no
// enforcement job downgrades them (deliberate, matching the billing rules).
func (m *Manager) renewalWorker() {
	defer m.wg.Done()

	for {
		select {
		case <-m.renewalTicker.C:
			svc := subscription.NewServiceFromDB(database.GetDB())
			tenants, err := svc.ListDueForRenewal(context.Background())
			if err != nil {
				log.Errorw("[Jobs] renewal scan failed", "error", err)
				continue
			}
			for _, tenant := range tenants {
				if _, err := svc.RenewSubscription(context.Background(), tenant.ID, 0); err != nil {
					log.Errorw("[Jobs] renewal failed", "tenant_id", tenant.ID, "error", err)
				}
			}
		case <-m.stopCh:
			return
		}
	}
}
