// Package cache provides a memory locality model using Akita cache
// components.
//
// The model is tag-only. emu.Memory stays the single copy of the data;
// the cache tracks which blocks would be resident and charges hit or miss
// cycles for each access.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `toml:"size"`
	// Associativity (number of ways)
	Associativity int `toml:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `toml:"block_size"`
	// HitLatency in cycles per block touched
	HitLatency uint64 `toml:"hit_latency"`
	// MissLatency in cycles per block fetched
	MissLatency uint64 `toml:"miss_latency"`
}

// DefaultConfig returns a small cache sized for the 4KB address space:
// 256 bytes, 2-way, 16-byte blocks.
func DefaultConfig() Config {
	return Config{
		Size:          256,
		Associativity: 2,
		BlockSize:     16,
		HitLatency:    0,
		MissLatency:   2,
	}
}

// Validate checks that the geometry describes at least one whole set.
func (c Config) Validate() error {
	if c.BlockSize <= 0 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("block_size must be a power of two, got %d", c.BlockSize)
	}
	if c.Associativity <= 0 {
		return fmt.Errorf("associativity must be > 0")
	}
	if c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size must be a positive multiple of associativity * block_size (%d)",
			c.Associativity*c.BlockSize)
	}
	return nil
}

// NumSets returns the number of sets.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// AccessResult contains the result of one access. An access may span
// several blocks.
type AccessResult struct {
	// Hits and Misses count blocks.
	Hits   int
	Misses int
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Evictions counts valid blocks replaced.
	Evictions int
}

// Hit reports whether every block touched was resident.
func (r AccessResult) Hit() bool {
	return r.Misses == 0
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// HitRate returns the fraction of block lookups that hit, or 0 before any
// access.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache represents a set-associative LRU cache.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	stats Statistics
}

// New creates a new cache with the given configuration. The configuration
// must be valid.
func New(config Config) *Cache {
	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			config.NumSets(),
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// Read models a read of size bytes at addr.
func (c *Cache) Read(addr uint16, size int) AccessResult {
	c.stats.Reads++
	return c.access(addr, size, false)
}

// Write models a write of size bytes at addr. Write-allocate: a missing
// block is brought in before it is marked dirty.
func (c *Cache) Write(addr uint16, size int) AccessResult {
	c.stats.Writes++
	return c.access(addr, size, true)
}

func (c *Cache) access(addr uint16, size int, isWrite bool) AccessResult {
	var result AccessResult
	if size <= 0 {
		return result
	}

	blockSize := uint64(c.config.BlockSize)
	first := c.blockAddr(uint64(addr))
	last := c.blockAddr(uint64(addr) + uint64(size) - 1)

	for blockAddr := first; blockAddr <= last; blockAddr += blockSize {
		block := c.directory.Lookup(0, blockAddr)
		if block != nil && block.IsValid {
			c.stats.Hits++
			result.Hits++
			result.Latency += c.config.HitLatency
		} else {
			c.stats.Misses++
			result.Misses++
			result.Latency += c.config.MissLatency
			block = c.fill(blockAddr, &result)
			if block == nil {
				continue
			}
		}

		if isWrite {
			block.IsDirty = true
		}
		c.directory.Visit(block) // Update LRU
	}

	return result
}

// fill installs blockAddr in its set, evicting the LRU block if needed.
func (c *Cache) fill(blockAddr uint64, result *AccessResult) *akitacache.Block {
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return nil
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evictions++
		if victim.IsDirty {
			c.stats.Writebacks++
		}
	}

	// Tag stores the block-aligned address
	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	return victim
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	blockSize := uint64(c.config.BlockSize)
	return (addr / blockSize) * blockSize
}

// Contains reports whether the block holding addr is resident.
func (c *Cache) Contains(addr uint16) bool {
	block := c.directory.Lookup(0, c.blockAddr(uint64(addr)))
	return block != nil && block.IsValid
}

// Invalidate marks the block holding addr as invalid.
func (c *Cache) Invalidate(addr uint16) {
	block := c.directory.Lookup(0, c.blockAddr(uint64(addr)))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush counts a writeback for every dirty block and invalidates all
// blocks.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
