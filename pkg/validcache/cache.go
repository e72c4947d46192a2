package validcache

import (
	"log/slog"
	"sync"
	"time"

	"github.com/govform/licensekit/pkg/rules"
)

// Config carries the cache timing knobs, loadable through pkg/config.
type Config struct {
	// DebounceWindow is the quiet period before a debounced field
	// validation runs. It should be in the format "300ms".
	DebounceWindow time.Duration `env:"LICENSEKIT_DEBOUNCE_WINDOW" envDefault:"300ms"`
	// StepFreshness is the window during which a cached whole-step result is
	// served without re-evaluation. It should be in the format "1s".
	StepFreshness time.Duration `env:"LICENSEKIT_STEP_FRESHNESS" envDefault:"1s"`
}

// Option configures a Cache.
type Option func(*Cache)

// WithDebounceWindow overrides the field debounce window.
func WithDebounceWindow(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithStepFreshness overrides the whole-step freshness window.
func WithStepFreshness(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.freshness = d
		}
	}
}

// WithConfig applies both windows from a Config.
func WithConfig(cfg Config) Option {
	return func(c *Cache) {
		WithDebounceWindow(cfg.DebounceWindow)(c)
		WithStepFreshness(cfg.StepFreshness)(c)
	}
}

// WithLogger sets the logger for cache activity (debug level only).
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

type fieldKey struct {
	step  int
	field string
}

type fieldEntry struct {
	result rules.FieldResult
	at     time.Time
}

type stepEntry struct {
	sum    uint64
	result rules.ValidationResult
	at     time.Time
}

// Cache is the per-session validation cache and debouncer. All methods are
// safe for concurrent use; timers fire on their own goroutines.
type Cache struct {
	mu        sync.Mutex
	debounce  time.Duration
	freshness time.Duration
	fields    map[fieldKey]fieldEntry
	timers    map[fieldKey]*time.Timer
	gens      map[fieldKey]uint64
	steps     map[int]stepEntry
	closed    bool
	log       *slog.Logger
}

// New creates a cache with the default 300 ms debounce and 1 s step
// freshness windows.
func New(opts ...Option) *Cache {
	c := &Cache{
		debounce:  300 * time.Millisecond,
		freshness: time.Second,
		fields:    make(map[fieldKey]fieldEntry),
		timers:    make(map[fieldKey]*time.Timer),
		gens:      make(map[fieldKey]uint64),
		steps:     make(map[int]stepEntry),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Neutral is the result served before a key has ever been evaluated: valid,
// neutral state, so an untouched field never renders as failing.
func Neutral() rules.FieldResult {
	return rules.FieldResult{Valid: true, State: rules.StateDefault}
}

// DebouncedField schedules eval after the quiet period and returns the best
// currently-known result immediately. A second call for the same key within
// the window cancels the pending evaluation and replaces it, so a burst of
// keystrokes runs eval exactly once with the last closure. onResult is
// invoked from the timer goroutine once the evaluation lands; it is skipped
// when the evaluation was superseded, cleared or the cache closed.
func (c *Cache) DebouncedField(step int, field string, eval func() rules.FieldResult, onResult func(rules.FieldResult)) rules.FieldResult {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Neutral()
	}

	k := fieldKey{step: step, field: field}
	if t, ok := c.timers[k]; ok {
		t.Stop()
	}
	c.gens[k]++
	gen := c.gens[k]
	c.timers[k] = time.AfterFunc(c.debounce, func() {
		c.fire(k, gen, eval, onResult)
	})

	entry, ok := c.fields[k]
	c.mu.Unlock()

	if ok {
		return entry.result
	}
	return Neutral()
}

// fire runs a debounced evaluation. The generation check makes a stale timer
// a no-op on both sides of the evaluation: before, and after in case the key
// was re-scheduled while eval was running.
func (c *Cache) fire(k fieldKey, gen uint64, eval func() rules.FieldResult, onResult func(rules.FieldResult)) {
	c.mu.Lock()
	if c.closed || c.gens[k] != gen {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	result := eval()

	c.mu.Lock()
	if c.closed || c.gens[k] != gen {
		c.mu.Unlock()
		return
	}
	c.fields[k] = fieldEntry{result: result, at: time.Now()}
	delete(c.timers, k)
	c.mu.Unlock()

	if onResult != nil {
		onResult(result)
	}
}

// ImmediateField bypasses the debounce entirely, used on blur and submit. It
// cancels any pending evaluation for the key, evaluates synchronously and
// caches the result.
func (c *Cache) ImmediateField(step int, field string, eval func() rules.FieldResult) rules.FieldResult {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Neutral()
	}
	k := fieldKey{step: step, field: field}
	if t, ok := c.timers[k]; ok {
		t.Stop()
		delete(c.timers, k)
	}
	c.gens[k]++
	c.mu.Unlock()

	result := eval()

	c.mu.Lock()
	if !c.closed {
		c.fields[k] = fieldEntry{result: result, at: time.Now()}
	}
	c.mu.Unlock()
	return result
}

// Field returns the cached result for a key without triggering evaluation.
func (c *Cache) Field(step int, field string) (rules.FieldResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.fields[fieldKey{step: step, field: field}]
	return entry.result, ok
}

// Step serves a whole-step validation through the freshness cache: identical
// data within the window returns the cached result without invoking eval.
// force bypasses the cache unconditionally.
func (c *Cache) Step(step int, data map[string]any, force bool, eval func() rules.ValidationResult) rules.ValidationResult {
	sum := snapshotHash(data)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return eval()
	}
	if !force {
		if entry, ok := c.steps[step]; ok && entry.sum == sum && time.Since(entry.at) < c.freshness {
			c.mu.Unlock()
			c.log.Debug("step validation served from cache", slog.Int("step", step))
			return entry.result
		}
	}
	c.mu.Unlock()

	result := eval()

	c.mu.Lock()
	if !c.closed {
		c.steps[step] = stepEntry{sum: sum, result: result, at: time.Now()}
	}
	c.mu.Unlock()
	return result
}

// Clear removes exactly one field entry and cancels its pending timer.
func (c *Cache) Clear(step int, field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := fieldKey{step: step, field: field}
	if t, ok := c.timers[k]; ok {
		t.Stop()
		delete(c.timers, k)
	}
	c.gens[k]++
	delete(c.fields, k)
}

// ClearStep removes the step result and every field entry of one step.
func (c *Cache) ClearStep(step int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.steps, step)
	for k, t := range c.timers {
		if k.step == step {
			t.Stop()
			delete(c.timers, k)
		}
	}
	for k := range c.fields {
		if k.step == step {
			delete(c.fields, k)
		}
	}
	for k := range c.gens {
		if k.step == step {
			c.gens[k]++
		}
	}
}

// ClearAll removes every entry and cancels every pending timer. Required on
// wizard reset so stale results cannot leak into a new session.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearAllLocked()
}

func (c *Cache) clearAllLocked() {
	for _, t := range c.timers {
		t.Stop()
	}
	// Fresh maps invalidate in-flight generations: a late fire compares its
	// generation against the zero value and backs off.
	c.fields = make(map[fieldKey]fieldEntry)
	c.timers = make(map[fieldKey]*time.Timer)
	c.gens = make(map[fieldKey]uint64)
	c.steps = make(map[int]stepEntry)
}

// Close clears everything and marks the cache unusable. Subsequent calls
// return the neutral result and schedule nothing.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.clearAllLocked()
	c.closed = true
}
