// Package testutils provides utilities for testing metaobj runtimes and the
// types installed in them.
package testutils

import (
	"errors"
	"sync"
	"testing"

	"github.com/zephyrtronium/metaobj"
)

// testRuntime is the runtime shared by tests that do not need isolation.
var testRuntime *metaobj.Runtime

var testRuntimeInit sync.Once

// TestingRuntime returns a runtime shared by all tests that use this package.
// Tests that count retains, frames, or statistics should use Runtime instead.
func TestingRuntime() *metaobj.Runtime {
	testRuntimeInit.Do(ResetTestingRuntime)
	return testRuntime
}

// ResetTestingRuntime reinitializes the runtime returned by TestingRuntime. It
// is not safe to call this in parallel tests.
func ResetTestingRuntime() {
	metaobj.ConfigureLogging(Config())
	rt, err := metaobj.NewRuntime(Config())
	if err != nil {
		panic(err)
	}
	testRuntime = rt
}

// Config returns the configuration used for test runtimes. Faults panic so
// tests can recover them, and leak warnings are off.
func Config() metaobj.Config {
	cfg := metaobj.DefaultConfig()
	cfg.OnFault = metaobj.FaultPanic
	cfg.WarnLeaks = false
	cfg.Verbosity = -4
	return cfg
}

// Runtime returns a new runtime for a single test. The test fails if any
// collect or perform frame is still active when it finishes.
func Runtime(t *testing.T) *metaobj.Runtime {
	t.Helper()
	metaobj.ConfigureLogging(Config())
	rt, err := metaobj.NewRuntime(Config())
	if err != nil {
		t.Fatalf("couldn't create runtime: %v", err)
	}
	t.Cleanup(func() {
		if n := rt.CollectDepth(); n != 0 {
			t.Errorf("%d collect frames left active", n)
		}
		if n := rt.PerformDepth(); n != 0 {
			t.Errorf("%d perform frames left active", n)
		}
	})
	return rt
}

// CatchFault runs f and returns the fault it causes, or nil if it returns
// normally. Panics other than faults continue.
func CatchFault(f func()) (fault *metaobj.Fault) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err, ok := r.(error)
		if !ok || !errors.As(err, &fault) {
			panic(r)
		}
	}()
	f()
	return nil
}

// ExpectFault is a testing helper to check that f faults with the given kind.
func ExpectFault(t *testing.T, kind metaobj.FaultKind, f func()) {
	t.Helper()
	fault := CatchFault(f)
	if fault == nil {
		t.Fatalf("expected %v fault, got none", kind)
	}
	if fault.Kind != kind {
		t.Fatalf("wrong fault: want %v, have %v (%v)", kind, fault.Kind, fault)
	}
}

// A SendTestCase is a test case which sends one message and checks the
// result.
type SendTestCase struct {
	// Receiver builds the receiver in the test's runtime.
	Receiver func(rt *metaobj.Runtime) metaobj.Value
	// Selector is the message to send.
	Selector string
	// Args builds the arguments. It may be nil.
	Args func(rt *metaobj.Runtime) []metaobj.Value
	// Pass is a predicate taking the result and any exception raised by the
	// send. If Pass returns false, the test fails.
	Pass func(rt *metaobj.Runtime, result metaobj.Value, err error) bool
}

// TestFunc returns a test function for the test case. Each case runs in its
// own runtime, inside a collect region.
func (c SendTestCase) TestFunc(name string) func(*testing.T) {
	return func(t *testing.T) {
		rt := Runtime(t)
		rt.Collect(func() {
			var r metaobj.Value
			err := rt.Protect(func() {
				recv := c.Receiver(rt)
				var args []metaobj.Value
				if c.Args != nil {
					args = c.Args(rt)
				}
				r = rt.SendName(recv, c.Selector, args...)
			})
			if !c.Pass(rt, r, err) {
				if err != nil {
					t.Errorf("%s: %s raised: %v", name, c.Selector, err)
				} else {
					t.Errorf("%s: %s produced wrong result: %s (%v)", name, c.Selector, rt.Describe(r), r)
				}
			}
		})
	}
}

// PassEqual returns a Pass function that predicates on rt.Equal with the
// value want builds. An exception fails the predicate.
func PassEqual(want func(rt *metaobj.Runtime) metaobj.Value) func(*metaobj.Runtime, metaobj.Value, error) bool {
	return func(rt *metaobj.Runtime, result metaobj.Value, err error) bool {
		if err != nil {
			return false
		}
		return rt.Equal(want(rt), result)
	}
}

// PassIdentical returns a Pass function that predicates on handle equality
// with an immediate value.
func PassIdentical(want metaobj.Value) func(*metaobj.Runtime, metaobj.Value, error) bool {
	return func(rt *metaobj.Runtime, result metaobj.Value, err error) bool {
		return err == nil && result == want
	}
}

// PassDescription returns a Pass function that predicates on the result's
// description.
func PassDescription(want string) func(*metaobj.Runtime, metaobj.Value, error) bool {
	return func(rt *metaobj.Runtime, result metaobj.Value, err error) bool {
		return err == nil && rt.Describe(result) == want
	}
}

// PassFailure returns a Pass function that returns true iff the send raised
// an exception with the given name.
func PassFailure(name string) func(*metaobj.Runtime, metaobj.Value, error) bool {
	return func(rt *metaobj.Runtime, result metaobj.Value, err error) bool {
		var exc *metaobj.Exception
		return errors.As(err, &exc) && exc.Name == name
	}
}

// PassSuccess returns a Pass function that returns true iff nothing was
// raised.
func PassSuccess() func(*metaobj.Runtime, metaobj.Value, error) bool {
	return func(rt *metaobj.Runtime, result metaobj.Value, err error) bool {
		return err == nil
	}
}

// CheckMethods is a testing helper to check that a class defines exactly the
// methods we expect directly on its meta-object.
func CheckMethods(t *testing.T, rt *metaobj.Runtime, class *metaobj.Object, names []string) {
	t.Helper()
	m := class.Meta()
	checked := make(map[string]bool, len(names))
	for _, name := range names {
		checked[name] = true
		t.Run("Have_"+name, func(t *testing.T) {
			if _, ok := m.LocalMethod(rt.Intern(name)); !ok {
				t.Fatal("no method", name)
			}
		})
	}
	m.ForeachMethod(func(sel *metaobj.Object, method *metaobj.Method) bool {
		name, _ := metaobj.SymbolName(metaobj.Ref(sel))
		t.Run("Want_"+name, func(t *testing.T) {
			if !checked[name] {
				t.Fatal("unexpected method", name)
			}
		})
		return true
	})
}

// CheckClass is a testing helper to check that class is registered under
// name, owns its meta-object, and delegates to parent's meta-object.
func CheckClass(t *testing.T, rt *metaobj.Runtime, name string, class, parent *metaobj.Object) {
	t.Helper()
	c, ok := rt.Class(name)
	if !ok {
		t.Fatalf("no class named %s", name)
	}
	if c != class {
		t.Errorf("wrong class for %s: want %v, have %v", name, class, c)
	}
	if !class.OwnsMeta() {
		t.Errorf("%v does not own its meta-object", class)
	}
	if !class.Immortal() {
		t.Errorf("%v is not immortal", class)
	}
	if p := class.Meta().Parent(); p != parent.Meta() {
		t.Errorf("wrong parent: want %v, have %v", parent.Meta(), p)
	}
}

// BenchDummy is a dummy variable to prevent dead code elimination in
// benchmarks.
var BenchDummy metaobj.Value
