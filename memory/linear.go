package memory

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/fleetmod/escadra/errors"
)

// Linear is a linear memory hosted by a wazero runtime.
type Linear struct {
	*WazeroMemory
	runtime wazero.Runtime
	module  api.Module
	cfg     Config
}

// NewLinear starts a runtime and instantiates a memory-only module sized by
// cfg. Close releases the runtime.
func NewLinear(ctx context.Context, cfg Config) (*Linear, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithMemoryLimitPages(cfg.maxPages())
	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	compiled, err := runtime.CompileModule(ctx, memoryModule(cfg.InitialPages, cfg.maxPages()))
	if err != nil {
		runtime.Close(ctx)
		return nil, errors.Instantiation(fmt.Errorf("compile memory module: %w", err))
	}

	// anonymous so several memories can share a process
	module, err := runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		runtime.Close(ctx)
		return nil, errors.Instantiation(fmt.Errorf("instantiate memory module: %w", err))
	}

	mem := module.ExportedMemory("memory")
	if mem == nil {
		runtime.Close(ctx)
		return nil, errors.NotFound(errors.PhaseRuntime, "export", "memory")
	}

	Logger().Debug("linear memory ready",
		zap.Uint32("pages", cfg.InitialPages),
		zap.Uint32("max_pages", cfg.maxPages()))

	return &Linear{
		WazeroMemory: NewWazeroMemory(mem),
		runtime:      runtime,
		module:       module,
		cfg:          cfg,
	}, nil
}

// Pages returns the current size in 64KiB pages.
func (l *Linear) Pages() uint32 {
	return l.Size() / PageSize
}

// MaxPages returns the growth limit.
func (l *Linear) MaxPages() uint32 {
	return l.cfg.maxPages()
}

// Close closes the module and the runtime hosting it.
func (l *Linear) Close(ctx context.Context) error {
	var firstErr error
	if l.module != nil {
		if err := l.module.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if err := l.runtime.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
