package change

import (
	"context"
	"crypto/sha1" //nolint:gosec // spec-mandated digest, not used for security
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PoWVersion is the only proof-of-work scheme version this module
// understands.
const PoWVersion = "POWv0"

// MaxDifficulty is the hard ceiling from §4.2's edge case: a difficulty
// of 60 or more would require int(digest15) < 2^0, which is
// indistinguishable from "impossible" for a 15-hex-nibble digest: reject
// it outright rather than mine forever.
const MaxDifficulty = 60

// RecommendedMaxDifficulty mirrors the source's own internal assertion
// (difficulty < 40); callers are free to request higher, but anything
// approaching MaxDifficulty will not terminate in practice.
const RecommendedMaxDifficulty = 40

// digestNibbles is how many hex nibbles of the SHA-1 digest the proof of
// work examines (§3: "first 15 hex nibbles").
const digestNibbles = 15

// CalculatePoW mines a nonce such that
// int(sha1(changeID||nonce)[:15 hex nibbles], 16) < 2^(60-difficulty),
// returning the encoded "POWv0$<nonce>$<digest15>" token. Mining is
// cancellable at nonce-loop granularity via ctx: callers that need to
// drop a pending Change without leaking compute should cancel ctx.
func CalculatePoW(ctx context.Context, changeID ChangeID, difficulty int) (string, error) {
	if difficulty < 0 || difficulty >= MaxDifficulty {
		return "", &Error{Op: "CalculatePoW", Err: ErrValidation, Msg: fmt.Sprintf("difficulty %d out of range [0,%d)", difficulty, MaxDifficulty)}
	}
	threshold := uint64(1) << uint(60-difficulty)

	for nonce := uint64(0); ; nonce++ {
		if nonce%4096 == 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
		}

		digestHex, value := powDigest(changeID, nonce)
		if value < threshold {
			return fmt.Sprintf("%s$%d$%s", PoWVersion, nonce, digestHex), nil
		}
	}
}

// GetPoWDifficulty recomputes the digest for the nonce embedded in pow
// and returns 60 - log2(int(digest15,16)). An error means pow is
// malformed or does not actually correspond to changeID (i.e. it was
// fabricated rather than mined).
func GetPoWDifficulty(changeID ChangeID, pow string) (float64, error) {
	nonce, digestHex, err := parsePoW(pow)
	if err != nil {
		return 0, err
	}

	expectedHex, expectedValue := powDigest(changeID, nonce)
	if expectedHex != digestHex {
		return 0, &Error{Op: "GetPoWDifficulty", Err: ErrVerification, Msg: "proof of work digest does not match change id and nonce"}
	}
	if expectedValue == 0 {
		// log2(0) is undefined; this is the maximum possible difficulty.
		return MaxDifficulty, nil
	}
	return 60 - math.Log2(float64(expectedValue)), nil
}

// parsePoW splits "POWv0$<nonce>$<digest15>" into its parts.
func parsePoW(pow string) (nonce uint64, digestHex string, err error) {
	parts := strings.Split(pow, "$")
	if len(parts) != 3 || parts[0] != PoWVersion {
		return 0, "", &Error{Op: "parsePoW", Err: ErrValidation, Msg: fmt.Sprintf("malformed proof of work: %q", pow)}
	}
	nonce, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, "", &Error{Op: "parsePoW", Err: ErrValidation, Msg: "malformed nonce: " + err.Error()}
	}
	if len(parts[2]) != digestNibbles {
		return 0, "", &Error{Op: "parsePoW", Err: ErrValidation, Msg: "malformed digest length"}
	}
	return nonce, parts[2], nil
}

// powDigest returns the first 15 hex nibbles of sha1(changeID||nonce)
// both as a hex string and as the integer it encodes.
func powDigest(changeID ChangeID, nonce uint64) (hexDigest string, value uint64) {
	h := sha1.New() //nolint:gosec
	h.Write([]byte(changeID.String()))
	h.Write([]byte(strconv.FormatUint(nonce, 10)))
	sum := h.Sum(nil)
	full := hex.EncodeToString(sum)
	hexDigest = full[:digestNibbles]
	value, _ = strconv.ParseUint(hexDigest, 16, 64)
	return hexDigest, value
}
