package updatecheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/upcheckio/upcheck/prefs"
	"github.com/upcheckio/upcheck/scheduler"
	"github.com/upcheckio/upcheck/system"
	"github.com/upcheckio/upcheck/webrequest"
)

const (
	// DefaultInitialDelay is the pause between Start and the first
	// automatic check.
	DefaultInitialDelay = 6 * time.Second
	// DefaultCheckInterval is the cadence of automatic checks.
	DefaultCheckInterval = time.Hour
	// DefaultCheckExpiration is how long a performed check suppresses
	// automatic re-checking.
	DefaultCheckExpiration = 24 * time.Hour

	periodicJobID = "update-check-periodic"
	forcedJobID   = "update-check-forced"
)

type checkState int

const (
	stateScheduled checkState = iota
	stateRequesting
	stateCompleted
)

func (s checkState) String() string {
	switch s {
	case stateScheduled:
		return "scheduled"
	case stateRequesting:
		return "requesting"
	default:
		return "completed"
	}
}

// check is one scheduled or in-flight update check and the completion
// callbacks coalesced onto it.
type check struct {
	typ   CheckType
	state checkState
	dones []func(error)
}

// Manager runs update checks against the configured endpoint and reports
// outcomes through an update listener and per-check completion callbacks.
// At most one manifest request is in flight per Manager at any time.
type Manager struct {
	app AppInfo

	store     prefs.Store
	transport Transport
	schedule  scheduler.Scheduler
	env       system.Environment

	initialDelay    time.Duration
	checkInterval   time.Duration
	checkExpiration time.Duration
	retry           *backoff.ExponentialBackOff

	mu      sync.Mutex
	current *check
	seq     int
	started bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc

	onUpdate     func(url string)
	listenerLock sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithPrefs replaces the in-memory preference store.
func WithPrefs(store prefs.Store) Option {
	return func(m *Manager) { m.store = store }
}

// WithTransport replaces the HTTP transport.
func WithTransport(transport Transport) Option {
	return func(m *Manager) { m.transport = transport }
}

// WithScheduler replaces the timer service.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(m *Manager) { m.schedule = s }
}

// WithEnvironment replaces the detected platform facts.
func WithEnvironment(env system.Environment) Option {
	return func(m *Manager) { m.env = env }
}

// WithCheckInterval overrides the cadence of automatic checks.
func WithCheckInterval(d time.Duration) Option {
	return func(m *Manager) { m.checkInterval = d }
}

// WithCheckExpiration overrides how long a performed check suppresses
// automatic re-checking.
func WithCheckExpiration(d time.Duration) Option {
	return func(m *Manager) { m.checkExpiration = d }
}

// NewManager creates a Manager for app. Without options it keeps its
// counters in memory, fetches over HTTPS and detects the host platform.
func NewManager(app AppInfo, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		app:             app,
		store:           prefs.NewMemoryStore(),
		transport:       webrequest.NewClient(),
		schedule:        scheduler.NewDefaultScheduler(),
		env:             system.Env(),
		initialDelay:    DefaultInitialDelay,
		checkInterval:   DefaultCheckInterval,
		checkExpiration: DefaultCheckExpiration,
		ctx:             ctx,
		cancel:          cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.retry = newRetryBackoff(m.checkInterval)
	return m
}

// SetOnUpdateListener registers the listener invoked with the download
// URL whenever a check finds an update.
func (m *Manager) SetOnUpdateListener(listener func(url string)) {
	m.listenerLock.Lock()
	defer m.listenerLock.Unlock()

	m.onUpdate = listener
}

// ForceCheck requests a manual update check and never blocks. When a
// check is already scheduled or in flight, done joins its completion
// callbacks instead of causing a second request. done receives nil when
// the check completed (with or without an update) and the classified
// error when it failed; it is invoked exactly once, from an arbitrary
// goroutine.
func (m *Manager) ForceCheck(done func(error)) {
	m.mu.Lock()
	if m.current != nil {
		if done != nil {
			m.current.dones = append(m.current.dones, done)
		}
		state := m.current.state
		m.mu.Unlock()
		log.Debugf("update check already %s, coalescing completion callback", state)
		return
	}

	c := &check{typ: CheckTypeManual, state: stateScheduled}
	if done != nil {
		c.dones = append(c.dones, done)
	}
	m.current = c
	m.seq++
	id := fmt.Sprintf("%s-%d", forcedJobID, m.seq)
	m.mu.Unlock()

	m.schedule.Schedule(0, id, func() (time.Duration, bool) {
		m.run(c)
		return 0, false
	})
}

// Check runs one forced update check and waits for its completion.
func (m *Manager) Check(ctx context.Context) error {
	done := make(chan error, 1)
	m.ForceCheck(func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start arms the periodic check schedule: a first automatic check after
// the initial delay, then one per check interval. Canceling ctx stops
// the manager.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		log.Errorf("update check manager already started")
		return
	}
	m.started = true
	m.mu.Unlock()

	m.schedule.Schedule(m.initialDelay, periodicJobID, m.periodicJob)

	go func() {
		select {
		case <-ctx.Done():
			m.Stop()
		case <-m.ctx.Done():
		}
	}()
}

// Stop cancels the periodic schedule and the run context. A check in
// flight still drains its completion callbacks, with the context error,
// but nothing is re-armed afterwards.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	m.schedule.Cancel([]string{periodicJobID})
	m.cancel()
}

// periodicJob is the scheduler job driving automatic checks. It blocks
// its timer goroutine until the check completes so the completion decides
// the next delay: the regular interval normally, a growing backoff after
// failures.
func (m *Manager) periodicJob() (nextRunIn time.Duration, reschedule bool) {
	done := make(chan error, 1)
	waiter := func(err error) { done <- err }

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return 0, false
	}

	var started *check
	if m.current != nil {
		m.current.dones = append(m.current.dones, waiter)
		log.Debugf("automatic update check found a check %s, waiting for it", m.current.state)
	} else {
		last := time.Unix(m.store.Prefs().LastCheck, 0)
		if time.Since(last) < m.checkExpiration {
			m.mu.Unlock()
			log.Debugf("automatic update check suppressed, last check at %s", last)
			return m.checkInterval, true
		}
		started = &check{typ: CheckTypeAutomatic, state: stateScheduled, dones: []func(error){waiter}}
		m.current = started
	}
	m.mu.Unlock()

	if started != nil {
		m.run(started)
	}
	err := <-done

	m.mu.Lock()
	stopped := m.stopped
	m.mu.Unlock()
	if stopped {
		return 0, false
	}

	if err != nil {
		next := m.retry.NextBackOff()
		log.Debugf("automatic update check failed, next attempt in %s", next)
		return next, true
	}
	m.retry.Reset()
	return m.checkInterval, true
}

// run moves a check into the requesting state and hands its URL to the
// transport. The completion continuation may fire on any goroutine,
// including synchronously.
func (m *Manager) run(c *check) {
	m.mu.Lock()
	c.state = stateRequesting
	st := m.store.Prefs()
	tmpl := st.UpdateURLRelease
	if m.app.DevBuild {
		tmpl = st.UpdateURLDevbuild
	}
	checkURL := buildCheckURL(tmpl, m.app, c.typ, m.env, st)
	ctx := m.ctx
	m.mu.Unlock()

	log.Debugf("requesting update manifest from %s", checkURL)
	m.transport.Fetch(ctx, checkURL, func(resp webrequest.Response) {
		m.complete(c, resp)
	})
}

// complete classifies the transport result, persists the counters, emits
// the update event and drains the completion callbacks, in that order.
func (m *Manager) complete(c *check, resp webrequest.Response) {
	entry, matched, err := m.classify(resp)

	now := time.Now().Unix()
	if perr := m.store.Update(func(p *prefs.Prefs) {
		p.LastCheck = now
		if err != nil {
			p.LastError = now
			return
		}
		p.LastError = 0
		if matched {
			p.LastVersion = entry.Version
			p.DownloadCount++
		}
	}); perr != nil {
		log.Warnf("failed to persist update check state: %v", perr)
	}

	m.mu.Lock()
	c.state = stateCompleted
	dones := c.dones
	c.dones = nil
	if m.current == c {
		m.current = nil
	}
	m.mu.Unlock()

	switch {
	case err != nil:
		log.Warnf("update check failed: %v", err)
	case matched:
		log.Infof("update %s available at %s", entry.Version, entry.URL)
	default:
		log.Debugf("no update available")
	}

	if matched {
		m.notifyUpdateAvailable(entry.URL)
	}
	for _, done := range dones {
		done(err)
	}
}

// classify maps a transport result onto the check outcome: a matched
// manifest entry, a plain no-update, or the error describing the failure.
func (m *Manager) classify(resp webrequest.Response) (manifestEntry, bool, error) {
	if resp.Err != nil {
		return manifestEntry{}, false, fmt.Errorf("%w: %v", ErrRequestFailed, resp.Err)
	}
	if resp.StatusCode != http.StatusOK {
		return manifestEntry{}, false, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}
	entries, err := parseManifest(resp.Body)
	if err != nil {
		return manifestEntry{}, false, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	entry, ok := matchManifest(entries, m.app)
	if !ok {
		return manifestEntry{}, false, nil
	}
	if err := checkDownloadURL(entry.URL); err != nil {
		return manifestEntry{}, false, err
	}
	return entry, true, nil
}

// checkDownloadURL enforces that announced download URLs are https.
func checkDownloadURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsecureURL, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q in %q", ErrInsecureURL, u.Scheme, raw)
	}
	return nil
}

func (m *Manager) notifyUpdateAvailable(url string) {
	m.listenerLock.Lock()
	defer m.listenerLock.Unlock()

	if m.onUpdate == nil {
		return
	}
	m.onUpdate(url)
}

func newRetryBackoff(maxInterval time.Duration) *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     time.Minute,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         maxInterval,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}
