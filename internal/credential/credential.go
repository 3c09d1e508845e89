// ABOUTME: Password hashing and verification using argon2id
// ABOUTME: Produces PHC-formatted digests with per-digest random salts

package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrCorruptDigest is returned when a stored digest cannot be parsed.
// A plain mismatch is not an error; Verify reports it as (false, nil).
var ErrCorruptDigest = errors.New("corrupt credential digest")

// argon2id parameters. Memory-hard by construction: 64 MiB, one pass,
// four lanes, 32-byte tag.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// Hash produces a salted argon2id digest of the plaintext in PHC string
// format: $argon2id$v=19$m=...,t=...,p=...$<salt>$<tag>
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	tag := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	digest := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(tag),
	)
	return digest, nil
}

// Verify checks plaintext against a stored digest. The tag comparison is
// constant-time. Returns ErrCorruptDigest only when the digest itself is
// malformed; a wrong password is (false, nil).
func Verify(digest, plaintext string) (bool, error) {
	salt, tag, memory, time, threads, err := parseDigest(digest)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, time, memory, threads, uint32(len(tag)))
	return subtle.ConstantTimeCompare(tag, candidate) == 1, nil
}

// parseDigest decodes a PHC argon2id digest string
func parseDigest(digest string) (salt, tag []byte, memory, time uint32, threads uint8, err error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: unexpected structure", ErrCorruptDigest)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: bad version field", ErrCorruptDigest)
	}
	if version != argon2.Version {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: unsupported version %d", ErrCorruptDigest, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: bad parameter field", ErrCorruptDigest)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: bad salt encoding", ErrCorruptDigest)
	}

	tag, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(tag) == 0 {
		return nil, nil, 0, 0, 0, fmt.Errorf("%w: bad tag encoding", ErrCorruptDigest)
	}

	return salt, tag, memory, time, threads, nil
}
