package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_RoundTrip(t *testing.T) {
	plain := []byte(`{"passwords":[{"tail":"mail","secret":"hunter22"}]}`)

	sealed, err := SealArchive([]byte("correct horse"), plain)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "hunter22")

	got, err := OpenArchive([]byte("correct horse"), sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	again, err := SealArchive([]byte("correct horse"), plain)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "fresh salt and nonce per archive")
}

func TestOpenArchive_Rejects(t *testing.T) {
	sealed, err := SealArchive([]byte("correct horse"), []byte("payload"))
	require.NoError(t, err)

	_, err = OpenArchive([]byte("wrong horse"), sealed)
	assert.ErrorIs(t, err, ErrOpen)

	tampered := append([]byte(nil), sealed...)
	tampered[len(archiveMagic)] ^= 1
	_, err = OpenArchive([]byte("correct horse"), tampered)
	assert.ErrorIs(t, err, ErrOpen, "salt is authenticated")

	_, err = OpenArchive([]byte("correct horse"), sealed[:len(archiveMagic)+archiveSaltSize+3])
	assert.ErrorIs(t, err, ErrOpen)

	_, err = OpenArchive([]byte("correct horse"), []byte("PK\x03\x04 not an archive at all"))
	assert.ErrorIs(t, err, ErrNotArchive)
}
