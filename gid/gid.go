// Package gid generates and decomposes Xcode's 24-hex-character object
// identifiers.
//
// A gid is a 96-bit value, written as 24 uppercase hex digits, laid out
// as (high to low bits): a 1-byte user hash, a 1-byte low byte of the
// generating process id, a 16-bit monotonic sequence counter, a 32-bit
// reference timestamp (seconds since 2001-01-01 00:00:00 UTC, the Core
// Data / Cocoa reference date Xcode itself uses), and a 32-bit
// process-local random salt.
//
// The exact hash used by Xcode to derive the user byte from a username is
// not available to this implementation (see this module's DESIGN.md, Open
// Question 1): it uses FNV-1a of the UTF-8 username, taking the low byte
// of the resulting 32-bit digest. The random salt uses math/rand/v2's PCG
// source seeded from the reference timestamp (Open Question 2), so a
// fixed Now function yields a reproducible stream for tests.
package gid

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"os/user"
	"strconv"
	"time"
)

// referenceEpoch is 2001-01-01 00:00:00 UTC, the base Xcode/Cocoa
// timestamps are measured from.
var referenceEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator produces new gids. The zero value is not usable; construct
// one with New.
type Generator struct {
	userByte byte
	pidByte  byte
	seq      uint16
	rng      *rand.Rand
	now      func() time.Time
}

// Options configures a Generator. All fields are optional; zero values
// fall back to the process's real username, pid, and clock.
type Options struct {
	// Username seeds the user-hash byte. Defaults to the current OS user.
	Username string
	// PID seeds the pid-low byte. Defaults to the current process id.
	PID int
	// Now returns the current time on each Generate call. Defaults to
	// time.Now; tests supply a deterministic stand-in.
	Now func() time.Time
}

// New constructs a Generator from opts, filling in OS-derived defaults
// for any zero field.
func New(opts Options) *Generator {
	username := opts.Username
	if username == "" {
		if u, err := user.Current(); err == nil {
			username = u.Username
		}
	}
	pid := opts.PID
	if pid == 0 {
		pid = os.Getpid()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ts := uint64(now().UTC().Sub(referenceEpoch).Seconds())
	return &Generator{
		userByte: userHash(username),
		pidByte:  byte(pid & 0xFF),
		seq:      uint16(pid) ^ uint16(ts),
		rng:      rand.New(rand.NewPCG(ts, uint64(pid))),
		now:      now,
	}
}

// userHash derives the one-byte user-hash field from username: FNV-1a of
// its UTF-8 bytes, low byte of the digest. See the package doc comment
// for why this substitutes for Xcode's own (unavailable) hash.
func userHash(username string) byte {
	h := fnv.New32a()
	h.Write([]byte(username))
	return byte(h.Sum32())
}

// Generate produces the next gid, advancing the sequence counter and
// re-sampling the clock.
func (g *Generator) Generate() string {
	ts := uint32(g.now().UTC().Sub(referenceEpoch).Seconds())
	g.seq++
	random := g.rng.Uint32()
	return fmt.Sprintf("%02X%02X%04X%08X%08X",
		g.userByte, g.pidByte, g.seq, ts, random)
}

// Fields is the decomposition of a gid into its component parts.
type Fields struct {
	UserByte byte
	PIDByte  byte
	Seq      uint16
	Time     time.Time
	Random   uint32
}

// Decompose parses a 24-hex-character gid string into its Fields.
func Decompose(s string) (Fields, error) {
	if len(s) != 24 {
		return Fields{}, fmt.Errorf("gid %q must be exactly 24 hex characters, got %d", s, len(s))
	}
	userByte, err := parseHexByte(s[0:2])
	if err != nil {
		return Fields{}, fmt.Errorf("gid %q: user byte: %w", s, err)
	}
	pidByte, err := parseHexByte(s[2:4])
	if err != nil {
		return Fields{}, fmt.Errorf("gid %q: pid byte: %w", s, err)
	}
	seq, err := strconv.ParseUint(s[4:8], 16, 16)
	if err != nil {
		return Fields{}, fmt.Errorf("gid %q: sequence: %w", s, err)
	}
	ts, err := strconv.ParseUint(s[8:16], 16, 32)
	if err != nil {
		return Fields{}, fmt.Errorf("gid %q: timestamp: %w", s, err)
	}
	random, err := strconv.ParseUint(s[16:24], 16, 32)
	if err != nil {
		return Fields{}, fmt.Errorf("gid %q: random: %w", s, err)
	}
	return Fields{
		UserByte: userByte,
		PIDByte:  pidByte,
		Seq:      uint16(seq),
		Time:     referenceEpoch.Add(time.Duration(ts) * time.Second),
		Random:   uint32(random),
	}, nil
}

func parseHexByte(s string) (byte, error) {
	n, err := strconv.ParseUint(s, 16, 8)
	return byte(n), err
}

// LooksValid reports whether s has the shape of a gid (24 uppercase hex
// characters) without fully decomposing it.
func LooksValid(s string) bool {
	if len(s) != 24 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
