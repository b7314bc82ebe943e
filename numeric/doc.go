// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package numeric provides the 2-D image/point-cloud primitives shared
// by the rest of flowcell-align: power-of-two rounding, median
// normalization, padded FFTs, rotation matrices, nearest-neighbor
// queries over 2-D point sets, and a weighted Procrustes solver.
package numeric
