package validcache_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govform/licensekit/pkg/rules"
	"github.com/govform/licensekit/pkg/validcache"
)

const (
	testWindow = 20 * time.Millisecond
	settle     = 250 * time.Millisecond
)

func invalidResult(msg string) rules.FieldResult {
	return rules.FieldResult{Valid: false, Error: msg, State: rules.StateInvalid}
}

func validResult() rules.FieldResult {
	return rules.FieldResult{Valid: true, State: rules.StateValid}
}

func TestDebouncedField_Coalescing(t *testing.T) {
	t.Parallel()
	c := validcache.New(validcache.WithDebounceWindow(testWindow))
	defer c.Close()

	var evals atomic.Int32
	var delivered atomic.Value

	// A burst of calls for the same key: only the last closure may run.
	for i := 0; i < 5; i++ {
		value := fmt.Sprintf("v%d", i)
		res := c.DebouncedField(1, "surname", func() rules.FieldResult {
			evals.Add(1)
			return invalidResult(value)
		}, func(r rules.FieldResult) {
			delivered.Store(r)
		})
		// Nothing cached yet: synchronous return is the neutral default.
		assert.True(t, res.Valid)
		assert.Equal(t, rules.StateDefault, res.State)
	}

	time.Sleep(settle)

	assert.Equal(t, int32(1), evals.Load())
	got, ok := delivered.Load().(rules.FieldResult)
	require.True(t, ok)
	assert.Equal(t, "v4", got.Error)

	cached, ok := c.Field(1, "surname")
	require.True(t, ok)
	assert.Equal(t, "v4", cached.Error)
}

func TestDebouncedField_ServesCachedWhilePending(t *testing.T) {
	t.Parallel()
	c := validcache.New(validcache.WithDebounceWindow(testWindow))
	defer c.Close()

	c.ImmediateField(0, "email_address", func() rules.FieldResult {
		return invalidResult("invalid email address")
	})

	res := c.DebouncedField(0, "email_address", validResult, nil)
	// The pending re-evaluation does not block; last-known result is served.
	assert.False(t, res.Valid)
	assert.Equal(t, "invalid email address", res.Error)

	time.Sleep(settle)
	cached, _ := c.Field(0, "email_address")
	assert.True(t, cached.Valid)
}

func TestDebouncedField_KeysDoNotInterfere(t *testing.T) {
	t.Parallel()
	c := validcache.New(validcache.WithDebounceWindow(testWindow))
	defer c.Close()

	var first, second atomic.Int32
	c.DebouncedField(0, "first_name", func() rules.FieldResult {
		first.Add(1)
		return validResult()
	}, nil)
	c.DebouncedField(0, "surname", func() rules.FieldResult {
		second.Add(1)
		return validResult()
	}, nil)
	c.DebouncedField(1, "first_name", func() rules.FieldResult {
		first.Add(1)
		return validResult()
	}, nil)

	time.Sleep(settle)
	// Same field name on a different step is a different key.
	assert.Equal(t, int32(2), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestImmediateField_BypassesDebounce(t *testing.T) {
	t.Parallel()
	c := validcache.New(validcache.WithDebounceWindow(time.Hour))
	defer c.Close()

	var debounced atomic.Int32
	c.DebouncedField(2, "phone", func() rules.FieldResult {
		debounced.Add(1)
		return validResult()
	}, nil)

	res := c.ImmediateField(2, "phone", func() rules.FieldResult {
		return invalidResult("too short")
	})
	assert.False(t, res.Valid)

	// The immediate call cancelled the pending debounced evaluation.
	time.Sleep(settle)
	assert.Equal(t, int32(0), debounced.Load())

	cached, ok := c.Field(2, "phone")
	require.True(t, ok)
	assert.Equal(t, "too short", cached.Error)
}

func TestStep_FreshnessWindow(t *testing.T) {
	t.Parallel()
	c := validcache.New(validcache.WithStepFreshness(time.Hour))
	defer c.Close()

	data := map[string]any{"surname": "Tamm", "documents": []map[string]any{{"type": "passport"}}}
	var evals atomic.Int32
	eval := func() rules.ValidationResult {
		evals.Add(1)
		return rules.ValidationResult{Valid: true}
	}

	t.Run("identical data within window evaluates once", func(t *testing.T) {
		c.Step(3, data, false, eval)
		c.Step(3, map[string]any{"surname": "Tamm", "documents": []map[string]any{{"type": "passport"}}}, false, eval)
		assert.Equal(t, int32(1), evals.Load())
	})

	t.Run("changed data re-evaluates", func(t *testing.T) {
		c.Step(3, map[string]any{"surname": "Kask"}, false, eval)
		assert.Equal(t, int32(2), evals.Load())
	})

	t.Run("force bypasses unconditionally", func(t *testing.T) {
		c.Step(3, map[string]any{"surname": "Kask"}, true, eval)
		assert.Equal(t, int32(3), evals.Load())
	})
}

func TestStep_ExpiredEntryReEvaluates(t *testing.T) {
	t.Parallel()
	c := validcache.New(validcache.WithStepFreshness(10 * time.Millisecond))
	defer c.Close()

	var evals atomic.Int32
	eval := func() rules.ValidationResult {
		evals.Add(1)
		return rules.ValidationResult{Valid: true}
	}
	data := map[string]any{"surname": "Tamm"}

	c.Step(0, data, false, eval)
	time.Sleep(100 * time.Millisecond)
	c.Step(0, data, false, eval)
	assert.Equal(t, int32(2), evals.Load())
}

func TestClear(t *testing.T) {
	t.Parallel()

	t.Run("clearing one key cancels its timer only", func(t *testing.T) {
		t.Parallel()
		c := validcache.New(validcache.WithDebounceWindow(testWindow))
		defer c.Close()

		var cleared, kept atomic.Int32
		c.DebouncedField(1, "surname", func() rules.FieldResult {
			cleared.Add(1)
			return validResult()
		}, nil)
		c.DebouncedField(1, "first_name", func() rules.FieldResult {
			kept.Add(1)
			return validResult()
		}, nil)

		c.Clear(1, "surname")

		time.Sleep(settle)
		assert.Equal(t, int32(0), cleared.Load())
		assert.Equal(t, int32(1), kept.Load())
	})

	t.Run("cleared entry forces fresh evaluation", func(t *testing.T) {
		t.Parallel()
		c := validcache.New(validcache.WithDebounceWindow(testWindow))
		defer c.Close()

		c.ImmediateField(1, "surname", func() rules.FieldResult {
			return invalidResult("field is required")
		})
		c.Clear(1, "surname")

		_, ok := c.Field(1, "surname")
		assert.False(t, ok)

		res := c.DebouncedField(1, "surname", validResult, nil)
		// The previously cached invalid result must not be served.
		assert.True(t, res.Valid)
		assert.Equal(t, rules.StateDefault, res.State)
	})

	t.Run("clear step removes field and step entries", func(t *testing.T) {
		t.Parallel()
		c := validcache.New()
		defer c.Close()

		c.ImmediateField(2, "phone", validResult)
		c.Step(2, map[string]any{"phone": "+3725551234"}, false, func() rules.ValidationResult {
			return rules.ValidationResult{Valid: true}
		})

		c.ClearStep(2)
		_, ok := c.Field(2, "phone")
		assert.False(t, ok)

		var evals atomic.Int32
		c.Step(2, map[string]any{"phone": "+3725551234"}, false, func() rules.ValidationResult {
			evals.Add(1)
			return rules.ValidationResult{Valid: true}
		})
		assert.Equal(t, int32(1), evals.Load())
	})
}

func TestClearAll_CancelsEveryTimer(t *testing.T) {
	t.Parallel()
	c := validcache.New(validcache.WithDebounceWindow(testWindow))
	defer c.Close()

	var evals atomic.Int32
	for step := 0; step < 3; step++ {
		for _, field := range []string{"a", "b", "c"} {
			c.DebouncedField(step, field, func() rules.FieldResult {
				evals.Add(1)
				return validResult()
			}, nil)
		}
	}

	c.ClearAll()

	time.Sleep(settle)
	// Every pending timer was cancelled; late fires are no-ops.
	assert.Equal(t, int32(0), evals.Load())
}

func TestClose(t *testing.T) {
	t.Parallel()
	c := validcache.New(validcache.WithDebounceWindow(testWindow))

	var evals atomic.Int32
	c.DebouncedField(0, "surname", func() rules.FieldResult {
		evals.Add(1)
		return validResult()
	}, nil)

	c.Close()

	// Scheduling after close is a no-op returning the neutral default.
	res := c.DebouncedField(0, "surname", func() rules.FieldResult {
		evals.Add(1)
		return validResult()
	}, nil)
	assert.True(t, res.Valid)
	assert.Equal(t, rules.StateDefault, res.State)

	time.Sleep(settle)
	assert.Equal(t, int32(0), evals.Load())

	// Close is idempotent.
	c.Close()
}
