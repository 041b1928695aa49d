package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fastParams keeps argon2 cheap enough for unit tests.
func fastParams() Params {
	return Params{
		MemoryKB:    8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(fastParams())
	require.NoError(t, err)
	return h
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy unavailable") }

func TestHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	encoded, err := h.Hash("Secr3t!")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"), encoded)
	assert.True(t, h.Verify("Secr3t!", encoded))
	assert.False(t, h.Verify("secr3t!", encoded))
	assert.False(t, h.Verify("", encoded))
}

func TestHasher_HashIsSalted(t *testing.T) {
	h := newTestHasher(t)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same-password", first))
	assert.True(t, h.Verify("same-password", second))
}

func TestHasher_AcceptsAnyInputShape(t *testing.T) {
	h := newTestHasher(t)

	for _, pw := range []string{"", "x", strings.Repeat("long", 100), "pässwörd 🔑"} {
		encoded, err := h.Hash(pw)
		require.NoError(t, err, "input %q", pw)
		assert.True(t, h.Verify(pw, encoded), "input %q", pw)
	}
}

func TestHasher_HashFailsOnEntropyError(t *testing.T) {
	h := newTestHasher(t)
	h.rand = failingReader{}

	_, err := h.Hash("Secr3t!")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHashing)
}

func TestHasher_VerifyMalformedNeverMatches(t *testing.T) {
	h := newTestHasher(t)
	valid, err := h.Hash("Secr3t!")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	cases := map[string]string{
		"empty":              "",
		"garbage":            "not-a-hash",
		"wrong algorithm":    "$argon2i$" + strings.Join(parts[2:], "$"),
		"wrong version":      "$argon2id$v=16$" + strings.Join(parts[3:], "$"),
		"missing parameter":  "$argon2id$v=19$m=8192,t=1$" + parts[4] + "$" + parts[5],
		"huge memory":        "$argon2id$v=19$m=4294967295,t=1,p=1$" + parts[4] + "$" + parts[5],
		"zero time":          "$argon2id$v=19$m=8192,t=0,p=1$" + parts[4] + "$" + parts[5],
		"bad salt encoding":  "$argon2id$v=19$m=8192,t=1,p=1$!!!$" + parts[5],
		"short key":          "$argon2id$v=19$m=8192,t=1,p=1$" + parts[4] + "$AAAA",
		"too many segments":  valid + "$extra",
		"truncated bcrypt":   "$2a$10$short",
		"unknown parameter":  "$argon2id$v=19$m=8192,t=1,x=1$" + parts[4] + "$" + parts[5],
		"non numeric memory": "$argon2id$v=19$m=lots,t=1,p=1$" + parts[4] + "$" + parts[5],
	}

	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("Secr3t!", encoded))
			})
		})
	}
}

func TestHasher_VerifyLegacyBcrypt(t *testing.T) {
	h := newTestHasher(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("Secr3t!"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, h.Verify("Secr3t!", string(legacy)))
	assert.False(t, h.Verify("wrong", string(legacy)))
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{name: "memory too low", mutate: func(p *Params) { p.MemoryKB = 1024 }},
		{name: "memory too high", mutate: func(p *Params) { p.MemoryKB = 2 * 1024 * 1024 }},
		{name: "zero time", mutate: func(p *Params) { p.Time = 0 }},
		{name: "zero parallelism", mutate: func(p *Params) { p.Parallelism = 0 }},
		{name: "short salt", mutate: func(p *Params) { p.SaltLength = 8 }},
		{name: "short key", mutate: func(p *Params) { p.KeyLength = 8 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			_, err := NewHasher(p)
			assert.Error(t, err)
		})
	}
}
