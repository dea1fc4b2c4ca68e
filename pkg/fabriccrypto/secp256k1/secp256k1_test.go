package secp256k1

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario S1 fixture: a well-known WIF test key and its mainnet P2PKH
// address.
const (
	s1WIF     = "5KYZdUEo39z3FPrtuX2QbbwGnNP5zTd7yyr2SC1j299sBCnWjss"
	s1Address = "1HZwkjkeaoZfTSaJxDw6aKkxp45agDiEzN"
)

func TestParseWIF_DerivesKnownAddress(t *testing.T) {
	kp, err := ParseWIF(s1WIF)
	require.NoError(t, err)
	require.Equal(t, s1Address, kp.Address().String())
}

func TestSignAndVerify_RoundTrip(t *testing.T) {
	kp, err := ParseWIF(s1WIF)
	require.NoError(t, err)

	message := []byte("change-id-example||rev-token-example")
	sig, err := kp.Sign(message)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	v := NewVerifier()
	require.True(t, v.Verify(kp.Address(), sig, message))
}

func TestVerify_FailsOnTamperedMessage(t *testing.T) {
	kp, err := ParseWIF(s1WIF)
	require.NoError(t, err)

	sig, err := kp.Sign([]byte("original message"))
	require.NoError(t, err)

	v := NewVerifier()
	require.False(t, v.Verify(kp.Address(), sig, []byte("tampered message")))
}

func TestVerify_FailsForWrongAddress(t *testing.T) {
	kp, err := ParseWIF(s1WIF)
	require.NoError(t, err)
	other, err := GenerateKeyPair(kp.params)
	require.NoError(t, err)

	message := []byte("hello")
	sig, err := kp.Sign(message)
	require.NoError(t, err)

	v := NewVerifier()
	require.False(t, v.Verify(other.Address(), sig, message))
}

func TestGenerateKeyPair_ProducesVerifiableSignature(t *testing.T) {
	kp, err := GenerateKeyPair(nil)
	require.NoError(t, err)

	sig, err := kp.Sign([]byte("payload"))
	require.NoError(t, err)

	v := NewVerifier()
	require.True(t, v.Verify(kp.Address(), sig, []byte("payload")))
}
