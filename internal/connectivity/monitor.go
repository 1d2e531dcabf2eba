package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"rotulo/internal/config"
	"rotulo/internal/logging"
)

// Event is a reachability transition.
type Event int

const (
	// WentOnline signals a transition from offline to online.
	WentOnline Event = iota
	// WentOffline signals a transition from online to offline.
	WentOffline
)

// ProbeFunc reports whether the remote side is reachable right now.
type ProbeFunc func(ctx context.Context) bool

// Monitor tracks online/offline state for the process lifetime.
type Monitor struct {
	probe    ProbeFunc
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	online  bool
	running bool
	subs    []chan Event
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	kick    chan struct{}
	netlink *netlinkWatcher
}

// NewMonitor builds a monitor backed by an HTTP probe against the
// configured endpoint.
func NewMonitor(cfg *config.Config, logger *slog.Logger) *Monitor {
	return NewMonitorWithProbe(cfg, logger, httpProbe(cfg))
}

// NewMonitorWithProbe builds a monitor with a custom probe (used in tests).
func NewMonitorWithProbe(cfg *config.Config, logger *slog.Logger, probe ProbeFunc) *Monitor {
	interval := time.Duration(cfg.Connectivity.ProbeInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "connectivity"),
		kick:     make(chan struct{}, 1),
	}
}

// Start seeds reachability from a synchronous probe, then begins watching
// for transitions until the context is cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.online = m.probe(runCtx)
	m.mu.Unlock()

	m.logger.Info("connectivity monitor started",
		logging.String(logging.FieldEventType, "connectivity_monitor_started"),
		logging.Bool("online", m.Online()),
	)

	m.netlink = newNetlinkWatcher(m.logger, m.RequestProbe)
	m.netlink.Start(runCtx)

	m.wg.Add(1)
	go m.loop(runCtx)
	return nil
}

// Stop tears the monitor down and closes all subscriber channels.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	if m.netlink != nil {
		m.netlink.Stop()
	}
	m.wg.Wait()

	m.mu.Lock()
	for _, sub := range m.subs {
		close(sub)
	}
	m.subs = nil
	m.mu.Unlock()
}

// Online reports the last-observed reachability.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe returns a channel of reachability transitions. The channel is
// buffered; slow consumers miss intermediate transitions rather than block
// the monitor. It is closed on Stop.
func (m *Monitor) Subscribe() <-chan Event {
	sub := make(chan Event, 4)
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
	return sub
}

// RequestProbe schedules an immediate reachability probe.
func (m *Monitor) RequestProbe() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeNow(ctx)
		case <-m.kick:
			m.probeNow(ctx)
		}
	}
}

func (m *Monitor) probeNow(ctx context.Context) {
	online := m.probe(ctx)

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	var subs []chan Event
	if changed {
		subs = append(subs, m.subs...)
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	event := WentOffline
	if online {
		event = WentOnline
	}
	m.logger.Info("reachability changed",
		logging.String(logging.FieldEventType, "reachability_changed"),
		logging.Bool("online", online),
	)
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
		}
	}
}

// ProbeOnce performs a single reachability probe against the configured
// endpoint. One-shot commands use it to pick the direct or queued path
// without running a monitor.
func ProbeOnce(ctx context.Context, cfg *config.Config) bool {
	return httpProbe(cfg)(ctx)
}

func httpProbe(cfg *config.Config) ProbeFunc {
	probeURL := cfg.Connectivity.ProbeURL
	timeout := time.Duration(cfg.Connectivity.ProbeTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	return func(ctx context.Context) bool {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, probeURL, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		// Any HTTP response means the network path works, even an error status.
		return true
	}
}
