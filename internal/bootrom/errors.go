// Copyright 2026 The Zynqtools Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bootrom

import "errors"

var (
	ErrNoPartitions      = errors.New("no partitions to build")
	ErrTooManyPartitions = errors.New("too many partitions for this architecture")
	ErrEmptyFile         = errors.New("partition file is empty")
	ErrOffsetCollision   = errors.New("partition offset collision")
	ErrBadOffset         = errors.New("partition offset is not word-aligned")
	ErrUnsupportedAttr   = errors.New("attribute not supported by this architecture")
	ErrFileChanged       = errors.New("partition file changed since size estimation")
	ErrShortBuffer       = errors.New("output buffer is smaller than the estimate")
	ErrImageTooLarge     = errors.New("image exceeds the maximum supported size")
)
