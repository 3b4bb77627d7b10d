// Copyright 2026 The Mahrgib Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability.
//
// Production code injects [Real]; tests inject [Fake] and drive time
// explicitly with Advance. Every production function that would call
// time.Now or time.After takes a Clock parameter (or is a
// method on a struct holding one) instead of touching the time package
// directly. The only consumers in this codebase are the gateway sync
// loop (retry backoff) and the service's uptime reporting.
//
// [FakeClock.WaitForTimers] removes the race between a goroutine
// registering a timer and the test advancing the clock: block until
// the expected number of waiters is registered, then Advance.
package clock
