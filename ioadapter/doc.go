// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package ioadapter holds every boundary this module has with the
// outside world: the HDF5 acquisition reader, the source-extractor
// catalog parser, the persisted AlignmentStats reader/writer, the
// acquisition YAML metadata reader/writer, and the optional PDF
// diagnostic emitter. The reads file is opened by cluster.LoadReads,
// and secondchannel.DiscoverJobs lists results directories itself.
package ioadapter
