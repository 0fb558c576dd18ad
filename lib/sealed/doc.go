// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed stores the account password at rest with age
// encryption, so a launch can run unattended without a plaintext
// password file on disk.
//
// [Seal] encrypts a password to one or more age recipients and
// returns ASCII-armored ciphertext. [Open] decrypts a sealed file
// (armored or binary) with the identities in an age identity file and
// returns the password in a [secret.Buffer].
package sealed
