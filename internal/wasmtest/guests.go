package wasmtest

const (
	heapBase    = 1024
	messageOff  = 16
	iovecOff    = 256
	stderrOff   = 272
	nwrittenOff = 296
)

var (
	allocType    = FuncType{Params: []byte{I32}, Results: []byte{I32}}
	reallocType  = FuncType{Params: []byte{I32, I32, I32, I32}, Results: []byte{I32}}
	deallocType  = FuncType{Params: []byte{I32, I32}}
	optimizeType = FuncType{Params: []byte{I32, I32}, Results: []byte{I64}}
	fdWriteType  = FuncType{Params: []byte{I32, I32, I32, I32}, Results: []byte{I32}}
	voidType     = FuncType{}
)

// packError mirrors the engine's result layout with the error bit set.
func packError(ptr, length uint32) int64 {
	return int64(uint64(1)<<63 | uint64(ptr)<<32 | uint64(length))
}

// bumpAlloc returns the current heap pointer and advances it by the size
// held in local sizeLocal. Nothing is ever freed.
func bumpAlloc(sizeLocal uint32) *Code {
	return NewCode().
		GlobalGet(0).
		GlobalGet(0).LocalGet(sizeLocal).I32Add().GlobalSet(0).
		End()
}

func identityBody() *Code {
	return NewCode().PackLocals(0, 1).End()
}

func base(optimize *Code) *Module {
	return &Module{
		MemoryPages:  4,
		ExportMemory: "memory",
		Globals:      []int32{heapBase},
		Funcs: []Func{
			{Type: allocType, Body: bumpAlloc(0), Export: "alloc"},
			{Type: deallocType, Body: NewCode().End(), Export: "dealloc"},
			{Type: optimizeType, Body: optimize, Export: "optimize"},
		},
	}
}

// Identity returns a guest whose optimize hands the input back unchanged.
func Identity() []byte {
	return base(identityBody()).Encode()
}

// Validating returns a guest that echoes input starting with '<' and
// otherwise reports message as an optimizer error.
func Validating(message string) []byte {
	errResult := packError(messageOff, uint32(len(message)))
	body := NewCode().
		LocalGet(1).I32Eqz().If().I64Const(errResult).Return().End().
		LocalGet(0).I32Load8U().I32Const('<').I32Ne().If().I64Const(errResult).Return().End().
		PackLocals(0, 1).
		End()

	m := base(body)
	m.Data = []Segment{{Offset: messageOff, Data: []byte(message)}}
	return m.Encode()
}

// Trapping returns a WASI guest that writes stderr to fd 2 and then traps.
func Trapping(stderr string) []byte {
	iovec := NewWriter()
	iovec.WriteU32LE(stderrOff)
	iovec.WriteU32LE(uint32(len(stderr)))

	body := NewCode().
		I32Const(2).I32Const(iovecOff).I32Const(1).I32Const(nwrittenOff).
		Call(0).Drop().
		Unreachable().
		End()

	m := base(body)
	m.Imports = []Import{{Module: "wasi_snapshot_preview1", Name: "fd_write", Type: fdWriteType}}
	m.Data = []Segment{
		{Offset: iovecOff, Data: iovec.Bytes()},
		{Offset: stderrOff, Data: []byte(stderr)},
	}
	return m.Encode()
}

// Realloc returns an identity guest that only exports the canonical ABI
// allocator plus a reactor _initialize.
func Realloc() []byte {
	m := &Module{
		MemoryPages:  4,
		ExportMemory: "memory",
		Globals:      []int32{heapBase},
		Funcs: []Func{
			{Type: reallocType, Body: bumpAlloc(3), Export: "cabi_realloc"},
			{Type: voidType, Body: NewCode().End(), Export: "_initialize"},
			{Type: optimizeType, Body: identityBody(), Export: "optimize"},
		},
	}
	return m.Encode()
}

// WithImport returns an identity guest that also imports module.name,
// which no host provides.
func WithImport(module, name string) []byte {
	m := base(identityBody())
	m.Imports = []Import{{Module: module, Name: name, Type: voidType}}
	return m.Encode()
}

// WithoutExports returns a guest exporting neither memory nor optimize.
func WithoutExports() []byte {
	m := base(identityBody())
	m.ExportMemory = ""
	m.Funcs[2].Export = ""
	return m.Encode()
}

// BadSignature returns a guest whose optimize takes one i32 and returns i32.
func BadSignature() []byte {
	m := base(nil)
	m.Funcs[2] = Func{Type: allocType, Body: NewCode().LocalGet(0).End(), Export: "optimize"}
	return m.Encode()
}

// Empty returns a guest whose optimize reports success with no bytes.
func Empty() []byte {
	return base(NewCode().I64Const(0).End()).Encode()
}

// FixedAlloc returns an identity guest whose alloc always answers ptr,
// whatever the size. Zero and out-of-range pointers model a broken heap.
func FixedAlloc(ptr int32) []byte {
	m := base(identityBody())
	m.Funcs[0].Body = NewCode().I32Const(ptr).End()
	return m.Encode()
}
