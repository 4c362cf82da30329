/**
 * Copyright 2025-present Marks AI.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marks-ai-client-go/internal/backend"
	"marks-ai-client-go/internal/models"

	"go.uber.org/zap"
)

// PollerConfig contains configuration for Poller
type PollerConfig struct {
	Backend         *backend.Service
	LicenseKey      string
	PollingInterval time.Duration
	LogWindow       int

	// OnCycle, when set, is invoked after every cycle that applied at
	// least one fresh result. Called without locks held.
	OnCycle func()
}

// SnapshotView is the trade snapshot together with its freshness.
type SnapshotView struct {
	Data      *models.TradeSnapshot
	FetchedAt time.Time
	Stale     bool
	Err       error
}

// LogView is the visible action-log window together with its freshness.
type LogView struct {
	Entries   []models.ActionLogEntry
	FetchedAt time.Time
	Stale     bool
	Err       error
}

// Poller keeps the trade snapshot and action log fresh for one license.
// Each cycle performs the snapshot fetch then the log fetch, independently
// guarded. Completions carry a generation number; a late response from an
// older cycle never overwrites a newer one.
type Poller struct {
	backend    *backend.Service
	licenseKey string

	pollingInterval time.Duration
	logWindow       int
	onCycle         func()

	mutex       sync.RWMutex
	paused      bool
	generation  uint64
	snapshotGen uint64
	logsGen     uint64
	snapshot    *models.TradeSnapshot
	snapshotAt  time.Time
	snapshotErr error
	logs        []models.ActionLogEntry
	logsAt      time.Time
	logsErr     error

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller for the given license
func NewPoller(cfg PollerConfig) *Poller {
	logWindow := cfg.LogWindow
	if logWindow <= 0 {
		logWindow = 100
	}
	return &Poller{
		backend:         cfg.Backend,
		licenseKey:      cfg.LicenseKey,
		pollingInterval: cfg.PollingInterval,
		logWindow:       logWindow,
		onCycle:         cfg.OnCycle,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start begins polling: one immediate cycle, then one per interval.
func (p *Poller) Start(ctx context.Context) error {
	if p.licenseKey == "" {
		return fmt.Errorf("no license selected")
	}
	if p.pollingInterval <= 0 {
		return fmt.Errorf("polling interval must be positive, got %v", p.pollingInterval)
	}

	zap.L().Info("Starting trade/log poller",
		zap.String("license_key", p.licenseKey),
		zap.Duration("polling_interval", p.pollingInterval))

	go p.pollLoop(ctx)
	return nil
}

// Stop halts polling. Safe to call more than once; returns after the loop
// has exited, so no fetch can apply afterward.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
	<-p.doneChan
	zap.L().Info("Trade/log poller stopped", zap.String("license_key", p.licenseKey))
}

// Pause suspends fetching without tearing down the ticker, so Resume
// rejoins the existing cadence instead of resetting the phase.
func (p *Poller) Pause() {
	p.mutex.Lock()
	p.paused = true
	p.mutex.Unlock()
}

// Resume re-enables fetching on the next tick.
func (p *Poller) Resume() {
	p.mutex.Lock()
	p.paused = false
	p.mutex.Unlock()
}

// Paused reports whether the live toggle is off.
func (p *Poller) Paused() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.paused
}

// RefreshNow performs one out-of-band cycle identical to the periodic one,
// without touching the timer phase.
func (p *Poller) RefreshNow(ctx context.Context) {
	p.pollCycle(ctx)
}

// pollLoop runs the main polling loop
func (p *Poller) pollLoop(ctx context.Context) {
	defer close(p.doneChan)

	ticker := time.NewTicker(p.pollingInterval)
	defer ticker.Stop()

	p.pollCycle(ctx)

	for {
		select {
		case <-ticker.C:
			if p.Paused() {
				continue
			}
			p.pollCycle(ctx)
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// pollCycle fetches the snapshot then the logs, each guarded on its own.
func (p *Poller) pollCycle(ctx context.Context) {
	p.mutex.Lock()
	p.generation++
	generation := p.generation
	p.mutex.Unlock()

	applied := false

	snapshot, err := p.backend.TradeData(ctx, p.licenseKey)
	if err != nil {
		zap.L().Debug("Trade snapshot fetch failed",
			zap.String("license_key", p.licenseKey),
			zap.Error(err))
		p.markSnapshotStale(generation, err)
	} else if p.applySnapshot(generation, snapshot) {
		applied = true
	}

	logs, err := p.backend.ActionLogs(ctx, p.licenseKey, p.logWindow)
	if err != nil {
		zap.L().Debug("Action log fetch failed",
			zap.String("license_key", p.licenseKey),
			zap.Error(err))
		p.markLogsStale(generation, err)
	} else if p.applyLogs(generation, logs) {
		applied = true
	}

	if applied && p.onCycle != nil {
		p.onCycle()
	}
}

// applySnapshot replaces the snapshot wholesale unless a newer cycle has
// already completed.
func (p *Poller) applySnapshot(generation uint64, snapshot *models.TradeSnapshot) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if generation < p.snapshotGen {
		zap.L().Debug("Discarding stale trade snapshot",
			zap.Uint64("generation", generation),
			zap.Uint64("applied", p.snapshotGen))
		return false
	}
	p.snapshotGen = generation
	p.snapshot = snapshot
	p.snapshotAt = time.Now().UTC()
	p.snapshotErr = nil
	return true
}

func (p *Poller) markSnapshotStale(generation uint64, err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if generation < p.snapshotGen {
		return
	}
	p.snapshotErr = err
}

// applyLogs replaces the whole visible log window, newest-last.
func (p *Poller) applyLogs(generation uint64, logs []models.ActionLogEntry) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if generation < p.logsGen {
		zap.L().Debug("Discarding stale action logs",
			zap.Uint64("generation", generation),
			zap.Uint64("applied", p.logsGen))
		return false
	}
	p.logsGen = generation
	p.logs = logs
	p.logsAt = time.Now().UTC()
	p.logsErr = nil
	return true
}

func (p *Poller) markLogsStale(generation uint64, err error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if generation < p.logsGen {
		return
	}
	p.logsErr = err
}

// Snapshot returns the current trade snapshot view.
func (p *Poller) Snapshot() SnapshotView {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return SnapshotView{
		Data:      p.snapshot,
		FetchedAt: p.snapshotAt,
		Stale:     p.snapshotErr != nil,
		Err:       p.snapshotErr,
	}
}

// Logs returns a copy of the visible log window view.
func (p *Poller) Logs() LogView {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	entries := make([]models.ActionLogEntry, len(p.logs))
	copy(entries, p.logs)
	return LogView{
		Entries:   entries,
		FetchedAt: p.logsAt,
		Stale:     p.logsErr != nil,
		Err:       p.logsErr,
	}
}
