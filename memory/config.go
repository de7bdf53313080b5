package memory

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fleetmod/escadra/errors"
)

// PageSize is the size of a wasm memory page.
const PageSize = 65536

// MaxPages keeps the byte size of a memory representable as a uint32.
const MaxPages = 65535

// Config sizes a linear memory and the heap inside it.
type Config struct {
	// InitialPages is the memory size at creation, in 64KiB pages.
	InitialPages uint32 `yaml:"initial_pages"`

	// MaxPages caps growth. 0 means InitialPages (no growth).
	MaxPages uint32 `yaml:"max_pages"`

	// HeapBase is the first address the heap may hand out. Addresses below it
	// are left for records placed by the caller. Must be non-zero so that no
	// allocation is ever the null pointer.
	HeapBase uint32 `yaml:"heap_base"`

	// MaxAlloc rejects single allocations larger than this many bytes.
	// 0 means no limit beyond the memory itself.
	MaxAlloc uint32 `yaml:"max_alloc"`
}

// DefaultConfig returns 4 pages growable to 256 (16MiB) with the heap
// starting at the second page.
func DefaultConfig() Config {
	return Config{
		InitialPages: 4,
		MaxPages:     256,
		HeapBase:     PageSize,
		MaxAlloc:     1 << 24,
	}
}

// Validate checks that the configuration describes a usable memory.
func (c Config) Validate() error {
	switch {
	case c.InitialPages == 0:
		return invalidConfig("initial_pages", "must be at least 1")
	case c.InitialPages > MaxPages:
		return invalidConfig("initial_pages", "at most 65535 pages")
	case c.MaxPages > MaxPages:
		return invalidConfig("max_pages", "at most 65535 pages")
	case c.MaxPages != 0 && c.MaxPages < c.InitialPages:
		return invalidConfig("max_pages", "smaller than initial_pages")
	case c.HeapBase == 0:
		return invalidConfig("heap_base", "must be non-zero")
	case uint64(c.HeapBase) >= uint64(c.InitialPages)*PageSize:
		return invalidConfig("heap_base", "outside the initial memory")
	}
	return nil
}

func (c Config) maxPages() uint32 {
	if c.MaxPages == 0 {
		return min(c.InitialPages, MaxPages)
	}
	return min(c.MaxPages, MaxPages)
}

// ParseConfig decodes YAML over DefaultConfig, so omitted keys keep their
// defaults, and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse memory config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return ParseConfig(data)
}

func invalidConfig(key, detail string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(key).
		Detail("%s", detail).
		Build()
}
