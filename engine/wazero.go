package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground"
	"github.com/wippyai/svgtidy-playground/errors"
)

// WazeroEngine owns the wazero runtime that optimizer guests are compiled into
type WazeroEngine struct {
	runtime      wazero.Runtime
	cache        wazero.CompilationCache
	wasiInitMu   sync.Mutex
	wasiInitDone atomic.Bool
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32

	// CacheDir persists compiled guests between process runs.
	// Empty means compile in memory on every start.
	CacheDir string

	// CloseOnContextDone stops a running guest when its call context ends.
	CloseOnContextDone bool
}

// NewWazeroEngine creates a new wazero-based engine
func NewWazeroEngine(ctx context.Context) (*WazeroEngine, error) {
	return NewWazeroEngineWithConfig(ctx, nil)
}

// NewWazeroEngineWithConfig creates a new engine with custom configuration
func NewWazeroEngineWithConfig(ctx context.Context, cfg *Config) (*WazeroEngine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	var cache wazero.CompilationCache

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CacheDir != "" {
			c, err := wazero.NewCompilationCacheWithDir(cfg.CacheDir)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "open compilation cache "+cfg.CacheDir)
			}
			cache = c
			runtimeCfg = runtimeCfg.WithCompilationCache(c)
		}
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	return &WazeroEngine{runtime: runtime, cache: cache}, nil
}

// LoadModule compiles an optimizer guest and checks it against the ABI.
func (e *WazeroEngine) LoadModule(ctx context.Context, wasmBytes []byte) (*WazeroModule, error) {
	if len(wasmBytes) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty wasm binary")
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile failed", err)
	}

	m := &WazeroModule{
		engine:   e,
		runtime:  e.runtime,
		compiled: compiled,
	}
	if err := m.link(); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	Logger().Debug("optimizer guest compiled",
		zap.Int("bytes", len(wasmBytes)),
		zap.String("alloc", m.allocName),
		zap.String("free", m.freeName),
		zap.Strings("exports", m.ExportNames()),
		zap.Bool("wasi", m.needsWASI))

	return m, nil
}

func (e *WazeroEngine) Close(ctx context.Context) error {
	err := e.runtime.Close(ctx)
	if e.cache != nil {
		if cerr := e.cache.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// InitWASI instantiates the WASI singleton for this engine's runtime.
// Safe for concurrent calls from multiple modules sharing the same engine.
func (e *WazeroEngine) InitWASI(ctx context.Context) error {
	if e.wasiInitDone.Load() {
		return nil
	}

	e.wasiInitMu.Lock()
	defer e.wasiInitMu.Unlock()

	if e.wasiInitDone.Load() {
		return nil
	}

	if e.runtime.Module(wasiModule) != nil {
		e.wasiInitDone.Store(true)
		return nil
	}

	if _, err := InstantiateWASI(ctx, e.runtime); err != nil {
		if e.runtime.Module(wasiModule) == nil {
			return errors.Wrap(errors.PhaseInstantiate, errors.KindInstantiation, err, "instantiate WASI")
		}
	}

	e.wasiInitDone.Store(true)
	return nil
}

// WazeroModule is a compiled optimizer guest
type WazeroModule struct {
	engine      *WazeroEngine
	runtime     wazero.Runtime
	compiled    wazero.CompiledModule
	allocName   string
	freeName    string
	freeArity   int
	simpleAlloc bool
	hasInit     bool
	needsWASI   bool
}

// link resolves the guest's imports and ABI exports without instantiating it.
func (m *WazeroModule) link() error {
	var missingImports []string
	for _, def := range m.compiled.ImportedFunctions() {
		mod, name, _ := def.Import()
		if mod == wasiModule {
			m.needsWASI = true
			continue
		}
		missingImports = append(missingImports, mod+"#"+name)
	}
	if len(missingImports) > 0 {
		sort.Strings(missingImports)
		return errors.NewMissingImportsError(missingImports)
	}

	exports := m.compiled.ExportedFunctions()
	var missing []string

	if _, ok := m.compiled.ExportedMemories()[ExportMemory]; !ok {
		missing = append(missing, ExportMemory)
	}

	for _, name := range allocExports {
		if def, ok := exports[name]; ok {
			m.allocName = name
			m.simpleAlloc = len(def.ParamTypes()) < 4
			break
		}
	}
	if m.allocName == "" {
		missing = append(missing, simpleAlloc+" or "+CabiRealloc)
	}

	opt, ok := exports[ExportOptimize]
	if !ok {
		missing = append(missing, ExportOptimize)
	}
	if len(missing) > 0 {
		return &errors.MissingExportsError{Exports: missing}
	}

	if !sameTypes(opt.ParamTypes(), api.ValueTypeI32, api.ValueTypeI32) ||
		!sameTypes(opt.ResultTypes(), api.ValueTypeI64) {
		return errors.New(errors.PhaseLink, errors.KindInvalidData).
			Export(ExportOptimize).
			Detail("signature %s, want (i32, i32) -> i64", signature(opt)).
			Build()
	}

	for _, name := range freeExports {
		if def, ok := exports[name]; ok {
			m.freeName = name
			m.freeArity = len(def.ParamTypes())
			break
		}
	}
	_, m.hasInit = exports[ExportInit]

	return nil
}

// Instantiate creates a fresh guest instance with its own linear memory.
func (m *WazeroModule) Instantiate(ctx context.Context) (*WazeroInstance, error) {
	if m.needsWASI {
		if err := m.engine.InitWASI(ctx); err != nil {
			return nil, err
		}
	}

	stderr := &tailBuffer{limit: stderrLimit}

	// Anonymous so several instances of the same guest can coexist.
	modConfig := wazero.NewModuleConfig().
		WithName("").
		WithStderr(stderr)
	if m.hasInit {
		modConfig = modConfig.WithStartFunctions(ExportInit)
	} else {
		modConfig = modConfig.WithStartFunctions()
	}

	instance, err := m.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	wazInst := &WazeroInstance{
		module:     m,
		instance:   instance,
		optimizeFn: instance.ExportedFunction(ExportOptimize),
		stderr:     stderr,
		stackBuf:   make([]uint64, 4),
	}
	wazInst.memory = &WazeroMemory{mem: instance.Memory()}
	wazInst.alloc = &wazeroAllocator{
		allocFn:       instance.ExportedFunction(m.allocName),
		isSimpleAlloc: m.simpleAlloc,
		freeArity:     m.freeArity,
		stackBuf:      wazInst.stackBuf,
	}
	if m.freeName != "" {
		wazInst.alloc.freeFn = instance.ExportedFunction(m.freeName)
	}

	return wazInst, nil
}

// Close releases the compiled code. Instances must be closed first.
func (m *WazeroModule) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// ExportNames returns the guest's exported function names, sorted.
func (m *WazeroModule) ExportNames() []string {
	exports := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WazeroInstance is one running optimizer guest. It is not safe for
// concurrent use.
type WazeroInstance struct {
	module     *WazeroModule
	instance   api.Module
	memory     *WazeroMemory
	alloc      *wazeroAllocator
	optimizeFn api.Function
	stderr     *tailBuffer
	stackBuf   []uint64
	broken     bool
}

// Optimize copies svg into guest memory, calls optimize and copies the
// result back out. A trap marks the instance broken; its memory can no
// longer be trusted.
func (i *WazeroInstance) Optimize(ctx context.Context, svg string) (string, error) {
	if i.instance == nil {
		return "", errors.Closed(errors.PhaseOptimize, "instance")
	}
	if i.broken {
		return "", errors.New(errors.PhaseOptimize, errors.KindTrap).
			Detail("instance unusable after an earlier trap").
			Build()
	}

	input := []byte(svg)
	size := uint32(len(input))

	inPtr, err := i.alloc.Alloc(ctx, size)
	if err != nil {
		i.broken = true
		return "", errors.AllocationFailed(size, err)
	}
	if size > 0 && inPtr == 0 {
		i.broken = true
		return "", errors.AllocationFailed(size, nil)
	}
	if err := i.memory.Write(inPtr, input); err != nil {
		i.alloc.Free(ctx, inPtr, size)
		i.broken = true
		return "", err
	}

	i.stackBuf[0] = uint64(inPtr)
	i.stackBuf[1] = uint64(size)
	if err := i.optimizeFn.CallWithStack(ctx, i.stackBuf[:2]); err != nil {
		i.broken = true
		return "", errors.Trap(ExportOptimize, err, i.stderr.String())
	}
	res := unpackResult(i.stackBuf[0])

	view, err := i.memory.Read(res.ptr, res.length)
	if err != nil {
		i.broken = true
		return "", err
	}
	out := make([]byte, len(view))
	copy(out, view)

	i.alloc.Free(ctx, inPtr, size)
	if res.ptr != inPtr {
		i.alloc.Free(ctx, res.ptr, res.length)
	}

	if !utf8.Valid(out) {
		return "", errors.InvalidUTF8(errors.PhaseABI, out)
	}
	if res.isErr {
		return "", errors.Guest(ExportOptimize, string(out))
	}
	if size > 0 && len(out) == 0 {
		return "", errors.New(errors.PhaseOptimize, errors.KindGuest).
			Export(ExportOptimize).
			Detail("no output for %d input bytes", size).
			Cause(svgtidy.ErrEmptyOutput).
			Build()
	}

	Logger().Debug("optimized", zap.Uint32("in", size), zap.Int("out", len(out)))
	return string(out), nil
}

// Broken reports whether an earlier call trapped.
func (i *WazeroInstance) Broken() bool {
	return i.broken
}

// Stderr returns what the guest wrote to stderr since the last reset.
func (i *WazeroInstance) Stderr() string {
	return i.stderr.String()
}

// ResetStderr discards captured guest stderr.
func (i *WazeroInstance) ResetStderr() {
	i.stderr.Reset()
}

// MemorySize returns the current guest memory size in bytes.
func (i *WazeroInstance) MemorySize() uint32 {
	if i.memory == nil {
		return 0
	}
	return i.memory.Size()
}

func (i *WazeroInstance) Close(ctx context.Context) error {
	var err error
	if i.instance != nil {
		err = i.instance.Close(ctx)
		i.instance = nil
	}
	// Clear references to help GC
	i.memory = nil
	i.alloc = nil
	i.optimizeFn = nil
	i.stackBuf = nil
	return err
}

// wazeroAllocator calls the guest's allocator exports
type wazeroAllocator struct {
	allocFn       api.Function
	freeFn        api.Function
	stackBuf      []uint64
	freeArity     int
	isSimpleAlloc bool
}

func (a *wazeroAllocator) Alloc(ctx context.Context, size uint32) (uint32, error) {
	if a.allocFn == nil {
		return 0, fmt.Errorf("no allocator available")
	}

	if a.isSimpleAlloc {
		a.stackBuf[0] = uint64(size)
		if err := a.allocFn.CallWithStack(ctx, a.stackBuf[:1]); err != nil {
			return 0, err
		}
		return uint32(a.stackBuf[0]), nil
	}
	a.stackBuf[0] = 0
	a.stackBuf[1] = 0
	a.stackBuf[2] = 1
	a.stackBuf[3] = uint64(size)
	if err := a.allocFn.CallWithStack(ctx, a.stackBuf[:4]); err != nil {
		return 0, err
	}
	return uint32(a.stackBuf[0]), nil
}

func (a *wazeroAllocator) Free(ctx context.Context, ptr, size uint32) {
	if a.freeFn == nil || ptr == 0 {
		return
	}

	args := [3]uint64{uint64(ptr), uint64(size), 1}
	n := a.freeArity
	if n > len(args) {
		n = len(args)
	}
	copy(a.stackBuf, args[:n])
	if err := a.freeFn.CallWithStack(ctx, a.stackBuf[:max(n, 1)]); err != nil {
		Logger().Warn("free: guest deallocation failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// WazeroMemory wraps wazero memory with bounds-checked access
type WazeroMemory struct {
	mem api.Memory
}

// Read returns a view of guest memory; callers copy before the next call.
func (m *WazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(offset, length, m.mem.Size())
	}
	return data, nil
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(offset, uint32(len(data)), m.mem.Size())
	}
	return nil
}

func (m *WazeroMemory) Size() uint32 {
	return m.mem.Size()
}

func sameTypes(got []api.ValueType, want ...api.ValueType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func signature(def api.FunctionDefinition) string {
	name := func(ts []api.ValueType) string {
		s := "("
		for i, t := range ts {
			if i > 0 {
				s += ", "
			}
			s += api.ValueTypeName(t)
		}
		return s + ")"
	}
	return name(def.ParamTypes()) + " -> " + name(def.ResultTypes())
}
