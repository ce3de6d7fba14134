package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/evyataryagoni/iptracker/internal/geolocation"
	"github.com/evyataryagoni/iptracker/internal/logger"
	"github.com/evyataryagoni/iptracker/internal/metrics"
	"github.com/evyataryagoni/iptracker/internal/models"
	"github.com/evyataryagoni/iptracker/internal/store"
)

// InvalidInputNotice is the message shown when a lookup is submitted without input
const InvalidInputNotice = "Invalid Input"

// ErrEmptyQuery is returned by Submit when the query is empty
var ErrEmptyQuery = errors.New("invalid input: query is empty")

const (
	DefaultBreakpoint = 768
	kindQuery         = "query"
	kindSelf          = "self"
)

// DefaultCenter is shown until the first lookup succeeds
var DefaultCenter = models.MapCenter{Lat: 51.505, Lng: -0.09}

// Notifier shows a blocking notice to the user
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(message string)

// Notify calls f(message)
func (f NotifierFunc) Notify(message string) { f(message) }

// Options configures a Controller
type Options struct {
	// APIKey, LookupURL, SelfURL and Timeout configure the HTTP provider
	// built when Provider is nil.
	APIKey    string
	LookupURL string
	SelfURL   string
	Timeout   time.Duration

	Provider      geolocation.Provider
	DefaultCenter *models.MapCenter // nil means DefaultCenter
	Breakpoint    int               // 0 means DefaultBreakpoint
	DiscardStale  bool              // drop responses that are not from the latest issued lookup

	Notifier Notifier
	History  store.Store // optional
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

// Controller owns the state of one tracker session: input text, the last
// successful LookupResult, the map center, the loading flag and the
// responsive-layout flag.
//
// Submit and AutoLocate run the lookup on the caller's goroutine; the Async
// variants run it on a new one. Concurrent lookups are not coordinated: the
// last one to complete wins, unless DiscardStale is set.
type Controller struct {
	provider     geolocation.Provider
	notifier     Notifier
	history      store.Store
	metrics      *metrics.Metrics
	logger       *logger.Logger
	breakpoint   int
	discardStale bool

	mu       sync.Mutex
	input    string
	result   *models.LookupResult
	center   models.MapCenter
	inFlight int
	mobile   bool
	seq      uint64

	// pubMu serializes publish so subscribers always end on the latest state
	pubMu       sync.Mutex
	subscribers map[int]func(models.State)
	nextSubID   int
}

// New creates a controller from the given options
func New(opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault()
	}

	provider := opts.Provider
	if provider == nil {
		provider = geolocation.NewClient(geolocation.ClientConfig{
			APIKey:    opts.APIKey,
			LookupURL: opts.LookupURL,
			SelfURL:   opts.SelfURL,
			Timeout:   opts.Timeout,
		})
	}

	center := DefaultCenter
	if opts.DefaultCenter != nil {
		center = *opts.DefaultCenter
	}

	breakpoint := opts.Breakpoint
	if breakpoint <= 0 {
		breakpoint = DefaultBreakpoint
	}

	c := &Controller{
		provider:     provider,
		notifier:     opts.Notifier,
		history:      opts.History,
		metrics:      opts.Metrics,
		logger:       log.WithComponent("Tracker"),
		breakpoint:   breakpoint,
		discardStale: opts.DiscardStale,
		center:       center,
		mobile:       true, // mobile-first until a width is known
		subscribers:  make(map[int]func(models.State)),
	}

	if c.notifier == nil {
		c.notifier = NotifierFunc(func(message string) {
			c.logger.Warn().Str("notice", message).Msg("User notice")
		})
	}

	return c
}

// State returns a snapshot of the session
func (c *Controller) State() models.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// snapshot must be called with mu held
func (c *Controller) snapshot() models.State {
	return models.State{
		Query:   c.input,
		Result:  c.result,
		Center:  c.center,
		Loading: c.inFlight > 0,
		Mobile:  c.mobile,
		Seq:     c.seq,
	}
}

// SetInput stores the current text of the input field
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// Submit looks up query and publishes the result.
//
// An empty query raises the invalid-input notice, issues no request and
// returns ErrEmptyQuery. Lookup failures keep the previous result and
// center, are logged, and are not returned.
func (c *Controller) Submit(ctx context.Context, query string) error {
	query, err := c.accept(query)
	if err != nil {
		return err
	}

	seq := c.begin()
	c.complete(ctx, seq, kindQuery, query, c.lookupQuery(query))
	return nil
}

// SubmitAsync is Submit with the lookup running on its own goroutine.
// The loading state is already published when it returns; done is closed
// once the lookup has completed.
func (c *Controller) SubmitAsync(ctx context.Context, query string) (done <-chan struct{}, err error) {
	query, err = c.accept(query)
	if err != nil {
		return nil, err
	}

	seq := c.begin()
	return c.background(ctx, seq, kindQuery, query, c.lookupQuery(query)), nil
}

// AutoLocate resolves the caller's own IP address. It is called once when
// the session starts; on failure the map stays on the default center.
func (c *Controller) AutoLocate(ctx context.Context) {
	seq := c.begin()
	c.complete(ctx, seq, kindSelf, "", c.provider.LookupSelf)
}

// AutoLocateAsync is AutoLocate with the lookup running on its own goroutine
func (c *Controller) AutoLocateAsync(ctx context.Context) (done <-chan struct{}) {
	seq := c.begin()
	return c.background(ctx, seq, kindSelf, "", c.provider.LookupSelf)
}

type lookupFunc func(context.Context) (*models.LookupResult, error)

func (c *Controller) lookupQuery(query string) lookupFunc {
	return func(ctx context.Context) (*models.LookupResult, error) {
		return c.provider.Lookup(ctx, query)
	}
}

// accept trims query and rejects it when empty
func (c *Controller) accept(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		c.notifier.Notify(InvalidInputNotice)
		if c.metrics != nil {
			c.metrics.LookupsTotal.WithLabelValues(kindQuery, "invalid").Inc()
		}
		return "", ErrEmptyQuery
	}

	c.SetInput(query)
	return query, nil
}

// begin issues a new sequence number and enters the loading state
func (c *Controller) begin() uint64 {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.inFlight++
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.LookupsInFlight.Inc()
	}
	c.publish()
	return seq
}

func (c *Controller) background(ctx context.Context, seq uint64, kind, query string, lookup lookupFunc) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.complete(ctx, seq, kind, query, lookup)
	}()
	return done
}

// complete performs lookup seq and applies its outcome
func (c *Controller) complete(ctx context.Context, seq uint64, kind, query string, lookup lookupFunc) {
	log := c.logger.WithSeq(seq)
	if query != "" {
		log = log.WithQuery(query)
	}

	start := time.Now()
	result, err := lookup(ctx)

	if c.metrics != nil {
		c.metrics.LookupsInFlight.Dec()
		c.metrics.LookupDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}

	applied := c.finish(seq, result, err)

	switch {
	case err != nil:
		log.Error().Err(err).Str("kind", kind).Msg("Lookup failed, keeping previous result")
		if c.metrics != nil {
			c.metrics.LookupsTotal.WithLabelValues(kind, "failure").Inc()
		}
	case !applied:
		log.Debug().Str("kind", kind).Msg("Discarded response from superseded lookup")
		if c.metrics != nil {
			c.metrics.LookupsDiscarded.Inc()
			c.metrics.LookupsTotal.WithLabelValues(kind, "discarded").Inc()
		}
	default:
		log.Info().
			Str("kind", kind).
			Str("ip", result.IP).
			Str("city", result.Location.City).
			Float64("lat", result.Location.Lat).
			Float64("lng", result.Location.Lng).
			Msg("Lookup successful")
		if c.metrics != nil {
			c.metrics.LookupsTotal.WithLabelValues(kind, "success").Inc()
		}
		c.record(log, query, result)
	}

	c.publish()
}

// finish clears the loading state for seq and applies a successful result.
// It reports whether the result replaced the current one.
func (c *Controller) finish(seq uint64, result *models.LookupResult, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight--
	if err != nil || result == nil {
		return false
	}
	if c.discardStale && seq != c.seq {
		return false
	}

	c.result = result
	c.center = result.Center()
	return true
}

func (c *Controller) record(log *logger.Logger, query string, result *models.LookupResult) {
	if c.history == nil {
		return
	}
	if query == "" {
		query = result.IP
	}

	entry := models.HistoryEntry{Query: query, Result: *result, RecordedAt: time.Now().UTC()}
	if err := c.history.Save(entry); err != nil {
		log.Warn().Err(err).Msg("Failed to record lookup history")
	}
}

// Subscribe registers fn to receive the state after every change.
// fn runs on the goroutine that made the change and must not call back
// into the controller. The returned func removes the subscription.
func (c *Controller) Subscribe(fn func(models.State)) (cancel func()) {
	c.pubMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.pubMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.pubMu.Lock()
			delete(c.subscribers, id)
			c.pubMu.Unlock()
		})
	}
}

func (c *Controller) publish() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()

	state := c.State()
	for _, fn := range c.subscribers {
		fn(state)
	}
}
