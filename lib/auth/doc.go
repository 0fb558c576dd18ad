// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth obtains launch tokens through an external credential
// helper.
//
// The login protocol is not implemented here. A [CommandAuthenticator]
// runs a user-configured program with the username as its last
// argument and the password on stdin, and reads the launch token from
// the program's stdout. The program's stderr becomes part of the error
// when it fails.
package auth
