// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package align implements the two-stage image<->point-cloud
// registration engine: rough alignment by FFT phase correlation with
// a per-tile SNR test against random angular shuffles,
// and precision alignment by weighted-Procrustes least squares on
// mutually-nearest-neighbor point pairs.
package align
