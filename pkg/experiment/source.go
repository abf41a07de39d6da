package experiment

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"

	"github.com/matzehuels/robdd/pkg/bitvec"
)

// source yields the truth tables of an experiment in a fixed order. It is
// used from a single goroutine.
type source struct {
	width      int
	exhaustive bool
	count      int

	cursor uint64 // next integer when enumerating

	rng  *rand.Rand
	seen map[[sha256.Size]byte]struct{}
	buf  []byte
}

func newSource(opts Options) *source {
	width := 1 << opts.Vars
	if opts.Exhaustive() {
		return &source{width: width, exhaustive: true, count: 1 << width}
	}
	return &source{
		width: width,
		count: opts.Samples,
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		seen:  make(map[[sha256.Size]byte]struct{}, opts.Samples),
		buf:   make([]byte, (width+7)/8),
	}
}

func (s *source) total() int { return s.count }

// next returns the next table. Sampled sources start with the all-false
// table and never repeat a table.
func (s *source) next() []bool {
	if s.exhaustive {
		t := bitvec.Table(s.cursor, s.width)
		s.cursor++
		return t
	}
	if len(s.seen) == 0 {
		clear(s.buf)
		s.seen[sha256.Sum256(s.buf)] = struct{}{}
		return bitvec.TableBytes(s.buf, s.width)
	}
	for {
		s.fill()
		key := sha256.Sum256(s.buf)
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		return bitvec.TableBytes(s.buf, s.width)
	}
}

func (s *source) fill() {
	var word [8]byte
	for i := 0; i < len(s.buf); i += 8 {
		binary.LittleEndian.PutUint64(word[:], s.rng.Uint64())
		copy(s.buf[i:], word[:])
	}
}
