package core

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

var (
	idRand   = rand.New(rand.NewSource(time.Now().UnixNano()))
	idRandMu sync.Mutex
)

// GenerateID returns a new row id: a type prefix, the trailing 6 digits of
// the current millisecond timestamp and 3 random digits, e.g. "ST482910253".
// IDs are generated client-side; the store treats them as opaque strings.
func GenerateID(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixNano()/int64(time.Millisecond), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	idRandMu.Lock()
	n := idRand.Intn(1000)
	idRandMu.Unlock()
	return fmt.Sprintf("%s%s%03d", prefix, ts, n)
}
