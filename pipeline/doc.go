// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pipeline runs the bulk per-image alignment pass: a bounded
// worker pool performs rough and precision alignment on every image in
// an acquisition's tile map, and a single writer goroutine serializes
// results to disk.
package pipeline
