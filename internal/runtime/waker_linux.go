// Copyright (C) 2026 The foldersync Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build linux

package runtime

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// epollWaker is the Linux wake primitive of spec.md §4.H: "epoll on a
// self-pipe... write(1 byte) on the pipe is the wake primitive." The dirty
// flag makes repeated Wake calls between two WaitUntil calls idempotent, per
// Design Notes §9's edge-triggered self-pipe discipline.
type epollWaker struct {
	epfd    int
	readFD  int
	writeFD int
	dirty   atomic.Bool
}

// NewWaker returns the platform-default Waker (epoll self-pipe on Linux).
func NewWaker() Waker {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		panic("runtime: pipe2: " + err.Error())
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		panic("runtime: epoll_create1: " + err.Error())
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fds[0])}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fds[0], &ev); err != nil {
		panic("runtime: epoll_ctl: " + err.Error())
	}
	return &epollWaker{epfd: epfd, readFD: fds[0], writeFD: fds[1]}
}

func (w *epollWaker) Wake() {
	if !w.dirty.CompareAndSwap(false, true) {
		return
	}
	var b [1]byte
	b[0] = 1
	_, _ = unix.Write(w.writeFD, b[:])
}

func (w *epollWaker) WaitUntil(deadline time.Time) {
	timeoutMs := int(time.Until(deadline).Milliseconds())
	if timeoutMs < 0 {
		timeoutMs = 0
	}
	events := make([]unix.EpollEvent, 1)
	for {
		_, err := unix.EpollWait(w.epfd, events, timeoutMs)
		if err == unix.EINTR {
			continue
		}
		break
	}
	w.drain()
}

func (w *epollWaker) drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(w.readFD, buf[:])
		if n <= 0 || err != nil {
			break
		}
	}
	w.dirty.Store(false)
}

func (w *epollWaker) Close() {
	_ = unix.Close(w.epfd)
	_ = unix.Close(w.readFD)
	_ = unix.Close(w.writeFD)
}
