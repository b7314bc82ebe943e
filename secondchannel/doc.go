// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package secondchannel re-derives per-read coordinates for a
// non-alignment imaging channel by reusing the pose and hitting tiles
// a first-channel pipeline run already discovered: SeedFromStats plus
// PrecisionAlign only, skipping RoughAlign's cross-correlation
// entirely.
package secondchannel
