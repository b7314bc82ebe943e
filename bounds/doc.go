// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bounds implements end-tile bounds discovery: probing the
// outermost imaged columns of each acquisition,
// left-to-right and right-to-left, to find which sequencer tiles fall
// under them.
package bounds
