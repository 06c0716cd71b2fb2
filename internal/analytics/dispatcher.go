// Package analytics sends best-effort conversion events to an HTTP collector.
// Nothing here may fail or block the caller: every send runs in its own
// goroutine under a hard timeout and errors are only logged.
package analytics

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"cabbooking/internal/utils"

	"go.uber.org/zap"
)

type Event struct {
	Name       string         `json:"name"`
	ClientID   string         `json:"client_id,omitempty"`
	Params     map[string]any `json:"params"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Dispatcher struct {
	URL     string
	Timeout time.Duration
	Salt    string
	Client  *http.Client

	wg sync.WaitGroup
}

func NewDispatcher(url string, timeout time.Duration, salt string) *Dispatcher {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &Dispatcher{URL: url, Timeout: timeout, Salt: salt, Client: &http.Client{Timeout: timeout}}
}

// Enabled is false when no collector URL is configured; Emit is then a no-op.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.URL != ""
}

// Hash pseudonymises an identifier with the dispatcher salt.
func (d *Dispatcher) Hash(v string) string {
	return HashID(d.Salt, v)
}

// HashID returns hex(sha256(salt + ":" + v)).
func HashID(salt, v string) string {
	sum := sha256.Sum256([]byte(salt + ":" + v))
	return hex.EncodeToString(sum[:])
}

// Emit queues ev for delivery and returns immediately.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	if !d.Enabled() {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.Timeout)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				utils.Logger().Error("analytics emit panicked", zap.Any("panic", r), zap.String("event", ev.Name))
			}
		}()
		if err := d.send(ctx, ev); err != nil {
			utils.Logger().Warn("analytics emit failed", zap.String("event", ev.Name), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight events finish or time out.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: d.Timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector responded %d", resp.StatusCode)
	}
	return nil
}
