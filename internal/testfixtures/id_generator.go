package testfixtures

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator hands out predictable identifiers in place of uuid.NewString.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	uuids   bool
	counter uint64
}

// NewIDGenerator yields "prefix-1", "prefix-2" and so on. An empty prefix
// becomes "id".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// NewUUIDGenerator yields name-based UUIDs derived from the sequence number,
// for tests that need ids shaped like production ones.
func NewUUIDGenerator() *IDGenerator {
	return &IDGenerator{uuids: true}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	if g.uuids {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.FormatUint(g.counter, 10))).String()
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc exposes Next for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued reports how many identifiers have been handed out.
func (g *IDGenerator) Issued() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}
