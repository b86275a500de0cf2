package schedule

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/crypto/chacha20"
)

// rngBufLen is the keystream buffer size. It must be a multiple of 8 so the
// 64-bit reads never straddle a refill.
const rngBufLen = 512

// Rng is the deterministic random stream behind schedule builds. It reads
// the ChaCha20 keystream for a 32-byte seed (zero nonce, counter starting
// at zero) as a sequence of little-endian 64-bit words. Every participant
// seeding an Rng with the same bytes consumes the identical word sequence,
// which is what makes independently built schedules agree.
type Rng struct {
	stream *chacha20.Cipher
	buf    [rngBufLen]byte
	off    int
}

// Seed derives the canonical schedule seed for an epoch: the epoch number
// little-endian in the first eight bytes, the remaining bytes zero.
func Seed(epoch uint64) [32]byte {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:8], epoch)
	return seed
}

// NewRng returns a stream positioned at the first word for the given seed.
func NewRng(seed [32]byte) *Rng {
	stream, err := chacha20.NewUnauthenticatedCipher(seed[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		// Key and nonce lengths are fixed above.
		panic(err)
	}
	r := &Rng{stream: stream}
	r.refill()
	return r
}

func (r *Rng) refill() {
	var zero [rngBufLen]byte
	r.stream.XORKeyStream(r.buf[:], zero[:])
	r.off = 0
}

// NextU64 returns the next 64-bit word of the stream.
func (r *Rng) NextU64() uint64 {
	if r.off == rngBufLen {
		r.refill()
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

// UniformU64 returns an unbiased draw in [0, bound) via widening-multiply
// rejection. Both the mapping and the rejection zone are fixed: changing
// either desynchronizes the draw sequence from other implementations even
// though the output would still be uniform. A bound of zero degenerates to
// the raw word.
func (r *Rng) UniformU64(bound uint64) uint64 {
	return uniformU64(r, bound)
}

// wordSource lets the rejection loop be driven by a scripted stream in tests.
type wordSource interface {
	NextU64() uint64
}

func uniformU64(src wordSource, bound uint64) uint64 {
	if bound == 0 {
		return src.NextU64()
	}
	zone := ^uint64(0) - (^uint64(0)-bound+1)%bound
	for {
		hi, lo := bits.Mul64(src.NextU64(), bound)
		if lo <= zone {
			return hi
		}
	}
}
