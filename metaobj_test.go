package metaobj_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zephyrtronium/metaobj"
	_ "github.com/zephyrtronium/metaobj/coreext"
	"github.com/zephyrtronium/metaobj/coreext/array"
	"github.com/zephyrtronium/metaobj/coreext/dict"
	"github.com/zephyrtronium/metaobj/coreext/str"
	"github.com/zephyrtronium/metaobj/testutils"
)

func TestLoadConfig(t *testing.T) {
	cases := map[string]struct {
		yaml string
		want func(*metaobj.Config)
		err  bool
	}{
		"Empty": {
			yaml: "",
			want: func(*metaobj.Config) {},
		},
		"Fields": {
			yaml: "method_capacity: 32\nmethod_cache: false\non_fault: exit\nverbosity: 2\n",
			want: func(c *metaobj.Config) {
				c.MethodCapacity = 32
				c.MethodCache = false
				c.OnFault = metaobj.FaultExit
				c.Verbosity = 2
			},
		},
		"NotPowerOfTwo": {
			yaml: "intern_capacity: 100\n",
			err:  true,
		},
		"BadMode": {
			yaml: "on_fault: ignore\n",
			err:  true,
		},
		"UnknownField": {
			yaml: "method_capacities: 8\n",
			err:  true,
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := metaobj.LoadConfig(strings.NewReader(c.yaml))
			if (err != nil) != c.err {
				t.Fatalf("wrong error: %v", err)
			}
			if c.err {
				return
			}
			want := metaobj.DefaultConfig()
			c.want(&want)
			if cfg != want {
				t.Errorf("wrong config: want %+v, have %+v", want, cfg)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "metaobj.yaml")
	if err := os.WriteFile(name, []byte("intern_capacity: 1024\nwarn_leaks: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := metaobj.LoadConfigFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InternCapacity != 1024 || cfg.WarnLeaks {
		t.Errorf("wrong config: %+v", cfg)
	}
	name = filepath.Join(t.TempDir(), "metaobj.toml")
	if err := os.WriteFile(name, []byte("method_cache = false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = metaobj.LoadConfigFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MethodCache {
		t.Errorf("TOML file not applied: %+v", cfg)
	}
	if _, err := metaobj.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("no error for missing file")
	}
}

func TestNewRuntimeBadConfig(t *testing.T) {
	cfg := metaobj.DefaultConfig()
	cfg.MethodCapacity = 3
	if _, err := metaobj.NewRuntime(cfg); !errors.Is(err, metaobj.ErrConfig) {
		t.Errorf("wrong error: %v", err)
	}
}

// TestGreeter runs the flow from the package documentation.
func TestGreeter(t *testing.T) {
	rt := testutils.Runtime(t)
	greeter, err := rt.DefineClass("Greeter", nil, 0, metaobj.Methods{
		"greet": func(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
			return metaobj.Ref(rt.Intern("hello"))
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	rt.Collect(func() {
		g := rt.Create(greeter)
		if got := rt.Describe(rt.SendName(g, "greet")); got != "hello" {
			t.Errorf("wrong greeting %q", got)
		}
	})
}

// TestBuiltinsTogether exercises promotion, super sends, exceptions, and
// collect regions across the built-in classes.
func TestBuiltinsTogether(t *testing.T) {
	rt := testutils.Runtime(t)
	before := rt.Stats()
	var kept metaobj.Value
	rt.Collect(func() {
		d := dict.NewMutable(rt)
		names := array.NewMutable(rt)
		for _, s := range []string{"a", "bb", "ccc"} {
			k := str.New(rt, s)
			rt.SendName(d, "atPut", k, rt.SendName(k, "size"))
			rt.SendName(names, "append", k)
		}
		// Give one array its own description, delegating to Array's.
		err := rt.AddMethod(names, rt.Intern("description"), metaobj.NewMethod("", func(rt *metaobj.Runtime, self metaobj.Value, call *metaobj.Call) metaobj.Value {
			inner := rt.Describe(rt.SuperSend(call, self))
			return str.New(rt, "names"+inner)
		}))
		if err != nil {
			t.Fatal(err)
		}
		if got := rt.Describe(names); got != "names(a, bb, ccc)" {
			t.Errorf("wrong description %q", got)
		}
		if got := rt.Describe(array.New(rt, metaobj.Uint(1))); got != "(1)" {
			t.Errorf("override leaked to other arrays: %q", got)
		}
		if v := rt.SendName(d, "at", str.New(rt, "bb")); v != metaobj.Uint(2) {
			t.Errorf("wrong lookup: %v", v)
		}
		err = rt.Protect(func() {
			rt.SendName(d, "at", str.New(rt, "bb"), metaobj.More)
			rt.SendName(metaobj.Uint(1), "/", metaobj.Uint(0))
			t.Error("raise returned")
		})
		if exc, ok := err.(*metaobj.Exception); !ok || exc.Name != "ZeroDivision" {
			t.Errorf("wrong error: %v", err)
		}
		kept = rt.Retain(rt.SendName(names, "at", metaobj.Uint(2)))
	})
	if kept.Object().Freed() {
		t.Fatal("retained string freed")
	}
	if got, _ := str.Of(kept); got != "ccc" {
		t.Errorf("kept %q", got)
	}
	rt.Release(kept)
	after := rt.Stats()
	if after.Created-before.Created != after.Destroyed-before.Destroyed {
		t.Errorf("created %d objects but destroyed %d", after.Created-before.Created, after.Destroyed-before.Destroyed)
	}
	if after.Promotions-before.Promotions != 1 {
		t.Errorf("%d promotions, want 1", after.Promotions-before.Promotions)
	}
}

func TestConfigureLogging(t *testing.T) {
	cfg := testutils.Config()
	cfg.LogPath = filepath.Join(t.TempDir(), "metaobj.log")
	cfg.Verbosity = 2
	metaobj.ConfigureLogging(cfg)
	defer metaobj.ConfigureLogging(testutils.Config())
	rt, err := metaobj.NewRuntime(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rt.SymbolCount() == 0 {
		t.Errorf("runtime has no symbols")
	}
}
