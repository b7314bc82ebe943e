// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cluster holds the immutable, shared-read-only point-cloud
// store: Illumina reads grouped into sequencer tiles, and the
// rasterization of arbitrary subsets of those tiles into synthetic
// images under a candidate pose. Its read-name parsing follows the
// same field layout as standard Illumina duplicate-marking tools.
package cluster
