// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/thejerf/suture/v4"

	"github.com/foldersync/foldersync/internal/config"
	"github.com/foldersync/foldersync/internal/identity"
	"github.com/foldersync/foldersync/internal/logger"
	"github.com/foldersync/foldersync/internal/metrics"
	"github.com/foldersync/foldersync/internal/model"
	"github.com/foldersync/foldersync/internal/model/diff"
	"github.com/foldersync/foldersync/internal/protocol"
	"github.com/foldersync/foldersync/internal/runtime"
	"github.com/foldersync/foldersync/internal/scanner"
	"github.com/foldersync/foldersync/internal/sequencer"
	"github.com/foldersync/foldersync/internal/store"
)

var l = logger.NewFacility("foldersyncd", "the daemon entrypoint")

// app holds everything wired together at startup (spec.md §5's "the
// cluster object is owned by and only mutated inside the network
// scheduler"): one cluster, one persistence bridge, one supervisor, and one
// scan scheduler per unpaused folder.
type app struct {
	cfg           config.Config
	hasherThreads int
	cluster       *model.Cluster
	store         *store.Store
	obs           *store.DBObserver
	ctrl          diff.ApplyController
	seq           *sequencer.Sequencer

	sup        *suture.Supervisor
	metricsSrv *http.Server
}

// newApp loads configuration and identity, opens the persistence bridge and
// replays its contents into a fresh cluster, and wires an ApplyController
// that persists and instruments every diff applied through it from then on.
func newApp(configDir string, consoleSink bool) (*app, error) {
	cfg, err := config.Load(filepath.Join(configDir, "config.toml"))
	if err != nil {
		return nil, fmt.Errorf("foldersyncd: %w", err)
	}
	// SYNCSPIRIT_CONSOLE_SINK / logging.console_sink: stderr is the
	// logger's own default output, so the only case needing action is a
	// configured log file the CLI flag hasn't overridden back to console.
	if !consoleSink && !cfg.Logging.ConsoleSink && cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("foldersyncd: open log file: %w", err)
		}
		logger.SetOutput(f)
	}

	kp, err := identity.LoadOrGenerateKeyPair(
		filepath.Join(configDir, cfg.CertFile),
		filepath.Join(configDir, cfg.KeyFile),
		cfg.DeviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("foldersyncd: identity: %w", err)
	}
	self := kp.DeviceID()
	l.Infof("foldersyncd: device ID %s", self)

	st, err := store.Open(filepath.Join(configDir, cfg.Database.Path))
	if err != nil {
		return nil, fmt.Errorf("foldersyncd: %w", err)
	}

	cluster := model.New(self)

	loadTree, err := st.Load()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("foldersyncd: load persisted state: %w", err)
	}
	loaded := 0
	progress := diff.ProgressController{
		Inner:   diff.DefaultController{},
		OnApply: func(diff.Kind) { loaded++ },
	}
	if err := loadTree.ApplyWithController(cluster, progress); err != nil {
		st.Close()
		return nil, fmt.Errorf("foldersyncd: apply persisted state: %w", err)
	}
	l.Infof("foldersyncd: replayed %d persisted record group(s)", loaded)

	obs := store.NewDBObserver(st, cluster).WithLimits(
		store.DefaultUncommittedThreshold,
		cfg.Database.WriteBufferMiB<<20,
	)

	persisting := diff.FuncController(func(d *diff.Diff, c *model.Cluster) error {
		if err := diff.DefaultController{}.Apply(d, c); err != nil {
			return err
		}
		return obs.Observe(d)
	})
	ctrl := metrics.InstrumentController(persisting)

	hasherThreads := cfg.HasherThreads
	if hasherThreads == 0 {
		hasherThreads = autoHasherThreads(cfg.FS.ConcurrentHashes)
	}

	return &app{
		cfg:           cfg,
		hasherThreads: hasherThreads,
		cluster:       cluster,
		store:         st,
		obs:           obs,
		ctrl:          ctrl,
		seq:           sequencer.New(),
		sup:           runtime.NewSupervisor("foldersyncd"),
	}, nil
}

// autoHasherThreads implements hasher_threads=0's "auto" sizing (spec.md
// §6) as the host's physical core count from gopsutil. It reads neither
// runtime.NumCPU, GOMAXPROCS nor cgroup quotas. fallback is used if the
// probe fails.
func autoHasherThreads(fallback int) int {
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// applyCommands runs each --command argument against the cluster in order,
// returning the inactivation wait spec.md §6's "inactivate:<seconds>"
// describes (zero if none was given).
func (a *app) applyCommands(commands []string) (time.Duration, error) {
	var wait time.Duration
	for _, c := range commands {
		d, err := execCommand(c, a.cluster, a.seq, a.ctrl)
		if err != nil {
			return 0, fmt.Errorf("foldersyncd: command %q: %w", c, err)
		}
		if d > wait {
			wait = d
		}
	}
	return wait, nil
}

// startScanners registers one SchedulerService per unpaused folder with the
// supervisor. Each scheduler steps its Engine on every posted message and
// posts itself another message until the engine reports Done, then uses
// AfterFunc to re-arm a full rescan after rescan_interval_s (spec.md §4.G,
// §6 "bep.rescan_interval_s").
func (a *app) startScanners() {
	self := protocol.ShortIDFromDeviceID(a.cluster.Self())
	for _, f := range a.cluster.Folders() {
		if f.Paused {
			continue
		}
		sched := a.newFolderScheduler(f.ID, f.Path, self)
		a.sup.Add(&runtime.SchedulerService{Name: "scan:" + f.ID, Scheduler: sched})
	}
}

const rescanTickAddress = "rescan"

func (a *app) newFolderScheduler(folderID, path string, self protocol.ShortID) *runtime.Scheduler {
	scanCfg := scanner.Config{
		Folder:                  folderID,
		Root:                    path,
		IgnorePerms:             false,
		AutoNormalize:           true,
		ConcurrentHashes:        a.hasherThreads,
		FilesScanIterationLimit: a.cfg.FS.FilesScanIterationLimit,
		BytesScanIterationLimit: a.cfg.FS.BytesScanIterationLimit,
		TempLifetime:            a.cfg.FS.TempLifetime,
		FDCacheSize:             a.cfg.FS.MRUSize,
	}

	var sched *runtime.Scheduler
	var eng *scanner.Engine

	handler := func(msg runtime.Message) {
		if eng == nil {
			eng = scanner.New(scanCfg, a.cluster, self)
		}
		if d := eng.Run(); d != nil {
			if err := d.ApplyWithController(a.cluster, a.ctrl); err != nil {
				l.Warnf("foldersyncd: folder %q: apply scan diff: %v", folderID, err)
			}
			if err := a.obs.Flush(); err != nil {
				l.Warnf("foldersyncd: folder %q: flush store: %v", folderID, err)
			}
		}
		if eng.Done() {
			if err := eng.Err(); err != nil {
				l.Warnf("foldersyncd: folder %q: scan ended with error: %v", folderID, err)
			}
			eng = nil
			interval := time.Duration(a.cfg.BEP.RescanIntervalS) * time.Second
			sched.AfterFunc(interval, func() { sched.Post(runtime.Message{Address: rescanTickAddress}) })
			return
		}
		sched.Post(runtime.Message{Address: rescanTickAddress})
	}

	sched = runtime.New(handler, nil)
	sched.Post(runtime.Message{Address: rescanTickAddress})
	return sched
}

// startMetrics binds the Prometheus handler if configured.
func (a *app) startMetrics() {
	if a.cfg.MetricsListen == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsSrv = &http.Server{Addr: a.cfg.MetricsListen, Handler: mux}
	go func() {
		if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Warnf("foldersyncd: metrics server: %v", err)
		}
	}()
}

// run blocks until ctx is cancelled, then shuts everything down in reverse
// wiring order.
func (a *app) run(ctx context.Context) error {
	a.startMetrics()
	sErr := make(chan error, 1)
	go func() { sErr <- a.sup.Serve(ctx) }()

	<-ctx.Done()
	err := <-sErr

	if a.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.metricsSrv.Shutdown(shutdownCtx)
	}
	if flushErr := a.obs.Flush(); flushErr != nil {
		l.Warnf("foldersyncd: final flush: %v", flushErr)
	}
	if closeErr := a.store.Close(); closeErr != nil {
		l.Warnf("foldersyncd: close store: %v", closeErr)
	}
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}
