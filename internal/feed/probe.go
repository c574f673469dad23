package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beelyapp/beely/internal/metrics"
)

// Prober checks that a video URL is still served and updates is_active.
type Prober struct {
	repo    *Repo
	client  *http.Client
	metrics *metrics.Metrics
}

func NewProber(repo *Repo, timeout time.Duration, m *metrics.Metrics) *Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Prober{repo: repo, client: &http.Client{Timeout: timeout}, metrics: m}
}

// Probe returns the new active state of the video. A transport error leaves
// the row untouched so the job can be retried.
func (p *Prober) Probe(ctx context.Context, videoID uint64) (bool, error) {
	v, err := p.repo.GetByID(ctx, videoID)
	if err != nil {
		return false, err
	}

	status, err := p.status(ctx, http.MethodHead, v.VideoURL)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = p.status(ctx, http.MethodGet, v.VideoURL)
	}
	if err != nil {
		p.metrics.VideoProbes.WithLabelValues("error").Inc()
		return false, fmt.Errorf("probe video %d: %w", videoID, err)
	}

	active := status >= 200 && status < 400
	if err := p.repo.SetActive(ctx, videoID, active); err != nil {
		return false, err
	}
	result := "inactive"
	if active {
		result = "active"
	}
	p.metrics.VideoProbes.WithLabelValues(result).Inc()
	return active, nil
}

func (p *Prober) status(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))
	return resp.StatusCode, nil
}
