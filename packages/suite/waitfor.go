package suite

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/hitassert/packages/http"
)

const (
	defaultWaitTimeout  = 30 * time.Second
	defaultWaitInterval = 500 * time.Millisecond
	waitRequestTimeout  = 5 * time.Second
)

// WaitFor polls URL before any check runs until it answers with Status.
type WaitFor struct {
	URL      string `yaml:"url"`
	Status   int    `yaml:"status,omitempty"`   // default 200
	Timeout  int    `yaml:"timeout,omitempty"`  // milliseconds, default 30000
	Interval int    `yaml:"interval,omitempty"` // milliseconds, default 500
}

// waitForService polls until the service is ready, the timeout passes or
// ctx is done.
func (r *Runner) waitForService(ctx context.Context, w *WaitFor) error {
	url := r.resolver.Resolve(w.URL)

	status := w.Status
	if status == 0 {
		status = 200
	}
	timeout := defaultWaitTimeout
	if w.Timeout > 0 {
		timeout = time.Duration(w.Timeout) * time.Millisecond
	}
	interval := defaultWaitInterval
	if w.Interval > 0 {
		interval = time.Duration(w.Interval) * time.Millisecond
	}

	r.logger.Info("waiting for service",
		zap.String("url", url),
		zap.Int("status", status),
		zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		lastErr    error
		lastStatus int
	)
	for {
		req := http.NewRequest("GET", url).SetTimeout(waitRequestTimeout)
		resp, err := r.client.Do(ctx, req)
		if err != nil {
			lastErr = err
		} else {
			lastStatus = resp.StatusCode()
			if lastStatus == status {
				r.logger.Info("service ready", zap.String("url", url))
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if lastStatus != 0 {
				return fmt.Errorf("service %s not ready after %v: got status %d, expected %d", url, timeout, lastStatus, status)
			}
			return fmt.Errorf("service %s not ready after %v: %v", url, timeout, lastErr)
		case <-time.After(interval):
		}
	}
}
