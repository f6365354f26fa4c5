// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthForms Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authforms/authforms/internal/auth"
	"github.com/authforms/authforms/pkg/errutil"
)

// cheapParams keeps argon2id fast enough for unit tests.
var cheapParams = auth.HasherParams{Time: 1, MemoryKiB: 64, Threads: 1}

func TestHashPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(cheapParams)

	t.Run("produces valid hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("different passwords produce different hashes", func(t *testing.T) {
		hash1, err := hasher.Hash("password1")
		require.NoError(t, err)
		hash2, err := hasher.Hash("password2")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeEmptyPassword)
	})

	t.Run("encodes parameters", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.Contains(t, hash, "$m=64,t=1,p=1$")
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(cheapParams)

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid hash format returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "not-a-valid-hash")
		assert.Error(t, err)
	})

	t.Run("wrong algorithm returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported hash algorithm")
	})

	t.Run("invalid version format returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA")
		assert.Error(t, err)
	})

	t.Run("invalid parameters format returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2id$v=19$invalid$c2FsdA$aGFzaA")
		assert.Error(t, err)
	})

	t.Run("invalid salt base64 returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2id$v=19$m=65536,t=1,p=4$!!!invalid!!!$aGFzaA")
		assert.Error(t, err)
	})

	t.Run("invalid hash base64 returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!invalid!!!")
		assert.Error(t, err)
	})

	t.Run("threads overflow returns error", func(t *testing.T) {
		// threads=256 exceeds uint8 max (255)
		_, err := hasher.Verify("password", "$argon2id$v=19$m=65536,t=1,p=256$c2FsdA$aGFzaA")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "threads value")
	})
}

func TestNeedsUpgrade(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(cheapParams)

	// This is a valid bcrypt hash for testing upgrade detection
	bcryptHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIvNq.Uf3hE9tQALNP1Qn9sNp5x5x5x5"

	t.Run("detects bcrypt hash needing upgrade", func(t *testing.T) {
		assert.True(t, hasher.NeedsUpgrade(bcryptHash))
	})

	t.Run("current parameters do not need upgrade", func(t *testing.T) {
		hash, err := hasher.Hash("password")
		require.NoError(t, err)
		assert.False(t, hasher.NeedsUpgrade(hash))
	})

	t.Run("different parameters need upgrade", func(t *testing.T) {
		stronger := auth.NewArgon2idHasherWithParams(auth.HasherParams{Time: 2, MemoryKiB: 64, Threads: 1})
		hash, err := hasher.Hash("password")
		require.NoError(t, err)
		assert.True(t, stronger.NeedsUpgrade(hash))

		ok, err := stronger.Verify("password", hash)
		require.NoError(t, err)
		assert.True(t, ok, "old parameters still verify")
	})
}

func TestNewArgon2idHasherWithParams_Defaults(t *testing.T) {
	h := auth.NewArgon2idHasherWithParams(auth.HasherParams{Time: 3})
	p := h.Params()
	assert.Equal(t, uint32(3), p.Time)
	assert.Equal(t, auth.DefaultHasherParams.MemoryKiB, p.MemoryKiB)
	assert.Equal(t, auth.DefaultHasherParams.Threads, p.Threads)
	assert.Equal(t, auth.DefaultHasherParams.KeyLen, p.KeyLen)

	assert.Equal(t, auth.DefaultHasherParams, auth.NewArgon2idHasher().Params())
}
