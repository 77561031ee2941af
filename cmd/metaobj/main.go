package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/zephyrtronium/metaobj"
	// import for side effects
	_ "github.com/zephyrtronium/metaobj/coreext"
)

func main() {
	var (
		config  = flag.String("config", "", "YAML runtime configuration file")
		cpuprof = flag.String("cpuprofile", "", "write a CPU profile to this file")
		quiet   = flag.Bool("q", false, "do not print prompts")
	)
	flag.Parse()

	cfg := metaobj.DefaultConfig()
	if *config != "" {
		var err error
		cfg, err = metaobj.LoadConfigFile(*config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	metaobj.ConfigureLogging(cfg)
	rt, err := metaobj.NewRuntime(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *cpuprof != "" {
		f, err := os.Create(*cpuprof)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	s := NewSession(rt)
	if *quiet {
		s.Prompt = ""
	}
	run := func() error { return s.Run(os.Stdin, os.Stdout) }
	if !*quiet && interactive() {
		run = func() error { return s.RunLiner(os.Stdout) }
	}
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	s.Close()
}
