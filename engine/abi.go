package engine

const (
	ExportMemory   = "memory"
	ExportOptimize = "optimize"
	ExportInit     = "_initialize"

	CabiRealloc = "cabi_realloc"
	CabiFree    = "cabi_free"

	// Names used by hand-written Rust/TinyGo/Zig guests
	legacyAlloc   = "allocate"
	simpleAlloc   = "alloc"
	simpleDealloc = "dealloc"
	simpleFree    = "free"

	wasiModule = "wasi_snapshot_preview1"
)

// Result packing for optimize(ptr, len) -> i64:
//
//	bits  0..31  byte length
//	bits 32..62  pointer into guest memory
//	bit  63      set when the bytes are an error message
const (
	errorFlag   = uint64(1) << 63
	pointerMask = uint64(0x7FFFFFFF)
)

type packedResult struct {
	ptr    uint32
	length uint32
	isErr  bool
}

func unpackResult(v uint64) packedResult {
	return packedResult{
		ptr:    uint32((v >> 32) & pointerMask),
		length: uint32(v),
		isErr:  v&errorFlag != 0,
	}
}

// PackResult encodes a guest result the way optimize must return it.
func PackResult(ptr, length uint32, isErr bool) uint64 {
	v := (uint64(ptr)&pointerMask)<<32 | uint64(length)
	if isErr {
		v |= errorFlag
	}
	return v
}

var allocExports = []string{CabiRealloc, legacyAlloc, simpleAlloc}

var freeExports = []string{CabiFree, simpleDealloc, simpleFree}
