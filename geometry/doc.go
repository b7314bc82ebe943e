// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package geometry implements the chip-geometry collaborator
// interface treated as external: the left/right side candidate tile
// keys, the rotation and tile-width estimates used to seed rough
// alignment, and the expected tile map derived from end-tile bounds.
// The candidate-key *enumeration heuristics* (how a given chip type's
// physical layout determines its left/right-side tile numbers) remain
// an explicit Non-goal; this package takes those keys as configuration
// and implements only the interpolation contract precisely.
package geometry
