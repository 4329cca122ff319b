// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"context"
	"sync"
	"time"
)

// HeadReader reports the last committed block.
type HeadReader interface {
	Head() uint32
}

type HeadIngestion struct {
	Number    uint32     `json:"number"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy      bool           `json:"healthy"`
	Head         *HeadIngestion `json:"head"`
	Bootstrapped bool           `json:"bootstrapped"`
}

// Health tracks how recently the pool head advanced.
type Health struct {
	lock         sync.RWMutex
	newHead      time.Time
	head         uint32
	bootstrapped bool
	now          func() time.Time
}

func New() *Health {
	return &Health{now: time.Now}
}

// Run polls src once a second until ctx is done.
func (h *Health) Run(ctx context.Context, src HeadReader) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		h.observe(src.Head())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Health) observe(head uint32) {
	h.lock.RLock()
	changed := head != h.head || h.newHead.IsZero()
	h.lock.RUnlock()
	if changed {
		h.NewHead(head)
	}
}

func (h *Health) NewHead(head uint32) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.newHead = h.now()
	h.head = head
}

func (h *Health) BootstrapStatus(bootstrapped bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.bootstrapped = bootstrapped
}

// Status is healthy when bootstrapped and the head moved within maxTimeBetweenBlocks.
func (h *Health) Status(maxTimeBetweenBlocks time.Duration) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	ts := h.newHead
	healthy := !ts.IsZero() &&
		h.now().Sub(ts) <= maxTimeBetweenBlocks &&
		h.bootstrapped

	return &Status{
		Healthy:      healthy,
		Head:         &HeadIngestion{Number: h.head, Timestamp: &ts},
		Bootstrapped: h.bootstrapped,
	}
}
