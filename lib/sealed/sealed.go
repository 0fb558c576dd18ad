// Copyright 2026 The Dfolaunch Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/dfolaunch/dfolaunch/lib/secret"
)

// Seal encrypts password to the given age public keys (age1...). The
// result is ASCII-armored. At least one recipient is required.
func Seal(password []byte, recipientKeys []string) ([]byte, error) {
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var output bytes.Buffer
	armorWriter := armor.NewWriter(&output)
	writer, err := age.Encrypt(armorWriter, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(password); err != nil {
		return nil, fmt.Errorf("encrypting password: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}
	return output.Bytes(), nil
}

// Open decrypts the sealed password file at path using the identities
// in identityPath. Surrounding whitespace is trimmed from the
// plaintext. The caller must Close the returned buffer.
func Open(path, identityPath string) (*secret.Buffer, error) {
	identityFile, err := os.Open(identityPath)
	if err != nil {
		return nil, fmt.Errorf("opening identity file: %w", err)
	}
	defer identityFile.Close()

	identities, err := age.ParseIdentities(identityFile)
	if err != nil {
		return nil, fmt.Errorf("parsing identity file %s: %w", identityPath, err)
	}

	sealedFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sealed password: %w", err)
	}
	defer sealedFile.Close()

	reader := bufio.NewReader(sealedFile)
	var source io.Reader = reader
	if header, _ := reader.Peek(len(armor.Header)); string(header) == armor.Header {
		source = armor.NewReader(reader)
	}

	decrypted, err := age.Decrypt(source, identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s: %w", path, err)
	}
	plaintext, err := io.ReadAll(decrypted)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("reading decrypted password: %w", err)
	}
	return secret.FromBytes(plaintext, path)
}
