// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of tatstore.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/gops/agent"
	"github.com/joho/godotenv"

	"github.com/fau-itc/tatstore/internal/config"
	"github.com/fau-itc/tatstore/internal/ingest"
	"github.com/fau-itc/tatstore/internal/queryapi"
	"github.com/fau-itc/tatstore/internal/registry"
	"github.com/fau-itc/tatstore/internal/telemetry"
	"github.com/fau-itc/tatstore/pkg/log"
)

func main() {
	var (
		flagAddr       string
		flagHTTPAddr   string
		flagConfigFile string
		flagGops       bool
		flagLeafCap    int
		flagFanout     int
		flagVerbose    verboseFlag
	)
	flag.StringVar(&flagAddr, "addr", "", "Ingest socket address (overrides config file; default localhost:12345)")
	flag.StringVar(&flagHTTPAddr, "http-addr", "", "Query/metrics HTTP address (overrides config file; default localhost:8082)")
	flag.StringVar(&flagConfigFile, "config", "./tatstore.json", "Path to a JSON configuration file, validated against an embedded schema")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.IntVar(&flagLeafCap, "leaf-cap", 0, "Override leaf capacity (overrides config file; 0 = use config/default)")
	flag.IntVar(&flagFanout, "fanout", 0, "Override internal-node fanout (overrides config file; 0 = use config/default)")
	flag.Var(&flagVerbose, "verbose", "Increase log verbosity; repeatable (a single -verbose enables debug)")
	flag.Parse()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("parsing '.env' file failed: %s", err)
	}

	log.SetLogLevel(flagVerbose.level())

	cfg, err := config.Load(flagConfigFile)
	if err != nil {
		log.Fatal(err)
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagHTTPAddr != "" {
		cfg.HTTPAddr = flagHTTPAddr
	}
	if flagLeafCap != 0 {
		cfg.LeafCap = flagLeafCap
	}
	if flagFanout != 0 {
		cfg.Fanout = flagFanout
	}

	reg := registry.New(cfg.LeafCap, cfg.Fanout)
	if d, err := time.ParseDuration(cfg.NotifyInterval); err == nil {
		reg.SetNotifyInterval(d)
	} else {
		log.Warnf("invalid notify-interval %q, using default: %s", cfg.NotifyInterval, err)
	}

	log.Infof("starting up: leaf-cap=%d fanout=%d", cfg.LeafCap, cfg.Fanout)

	metrics := telemetry.New()
	reg.AttachMetrics(metrics)

	ingestSrv := ingest.NewServer(cfg.Addr, reg, metrics)
	querySrv := queryapi.NewServer(cfg.HTTPAddr, reg, metrics)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := ingestSrv.Run(ctx); err != nil {
			log.Fatalf("ingest server stopped: %s", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := querySrv.Run(ctx); err != nil {
			log.Fatalf("query server stopped: %s", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Infof("shutting down, %d signals holding %s", reg.SignalCount(), humanize.Bytes(uint64(reg.SizeInBytes())))
	cancel()
	wg.Wait()
	log.Info("graceful shutdown completed")
}

// verboseFlag counts how many times -verbose was passed on the command
// line; flag.Var is used instead of flag.BoolVar so the flag is repeatable.
type verboseFlag int

func (v *verboseFlag) String() string {
	if v == nil {
		return "0"
	}
	return fmt.Sprintf("%d", int(*v))
}

func (v *verboseFlag) Set(string) error {
	*v++
	return nil
}

func (v *verboseFlag) IsBoolFlag() bool { return true }

func (v verboseFlag) level() string {
	switch {
	case v <= 0:
		return "info"
	case v == 1:
		return "debug"
	default:
		return "debug"
	}
}
