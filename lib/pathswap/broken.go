// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package pathswap

import "os"

// IsBroken reports whether spec is half-exchanged: Temp exists
// together with Normal or Custom.
func IsBroken(spec Spec) bool {
	return exists(spec.Temp) && (exists(spec.Normal) || exists(spec.Custom))
}

// FixBroken restores the pre-swap layout of a half-exchanged spec.
//
// With Temp and Normal present, Normal is taken to still be the
// custom content: it moves to Custom and Temp moves to Normal. With
// Temp and Custom present, Temp moves to Normal. Any other layout is
// not broken and FixBroken does nothing. All three present cannot be
// resolved without losing one of them and is reported as
// [ErrAmbiguous].
func FixBroken(spec Spec) error {
	tempInfo, err := os.Lstat(spec.Temp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &Error{Op: OpRepair, Spec: spec, Err: err}
	}
	fileType := fileTypeOf(tempInfo)
	normalExists, customExists := exists(spec.Normal), exists(spec.Custom)

	switch {
	case normalExists && customExists:
		return &Error{Op: OpRepair, Spec: spec, Err: ErrAmbiguous}
	case normalExists:
		if err := move(spec.Normal, spec.Custom, fileType); err != nil {
			return &Error{Op: OpRepair, Spec: spec, Step: describeMove(spec.Normal, spec.Custom), Err: err}
		}
		if err := move(spec.Temp, spec.Normal, fileType); err != nil {
			return undo(OpRepair, spec, describeMove(spec.Temp, spec.Normal), err, spec.Custom, spec.Normal, fileType)
		}
	case customExists:
		if err := move(spec.Temp, spec.Normal, fileType); err != nil {
			return &Error{Op: OpRepair, Spec: spec, Step: describeMove(spec.Temp, spec.Normal), Err: err}
		}
	}
	return nil
}
