// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command foldersyncd is the daemon entrypoint of spec.md §6: it loads the
// TOML configuration, the device identity, and the persisted cluster
// state, then runs one scan scheduler per unpaused folder under a
// supervisor until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	_ "github.com/foldersync/foldersync/internal/automaxprocs"
)

// cli is the flat flag struct spec.md §6 describes: a config directory, a
// console-sink toggle, and zero or more --command values applied in order
// before the daemon settles into its steady-state run loop.
type cli struct {
	ConfigDir   string   `help:"Directory holding config.toml, the cert/key pair and the database" env:"SYNCSPIRIT_CONFIG_DIR" default:"."`
	ConsoleSink bool     `help:"Force log output to stderr regardless of logging.console_sink" env:"SYNCSPIRIT_CONSOLE_SINK"`
	Command     []string `help:"Run a ':'-separated control command (add_peer, add_folder, share, inactivate) before starting" name:"command"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var params cli
	parser := kong.Must(&params, kong.Name("foldersyncd"))
	kongplete.Complete(parser)
	_, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	a, err := newApp(params.ConfigDir, params.ConsoleSink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	wait, err := a.applyCommands(params.Command)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	a.startScanners()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if wait > 0 {
		go func() {
			select {
			case <-ctx.Done():
			case <-time.After(wait):
				stop()
			}
		}()
	}

	if err := a.run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
