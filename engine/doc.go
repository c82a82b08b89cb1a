// Package engine provides the low-level wazero host for optimizer guests.
//
// # Architecture
//
// The engine package provides three main types:
//
//	WazeroEngine   - Creates and manages the wazero runtime and compilation cache
//	WazeroModule   - A compiled guest whose imports and exports were checked
//	WazeroInstance - A running guest with its own linear memory
//
// # Guest ABI
//
// An optimizer guest is a core WebAssembly module exporting:
//
//	Export          Signature                              Required
//	─────────────────────────────────────────────────────────────────
//	memory          linear memory                          yes
//	cabi_realloc    (old, old_size, align, size) -> ptr    one allocator
//	alloc/allocate  (size) -> ptr                          one allocator
//	cabi_free       (ptr, size, align)                     no
//	dealloc/free    (ptr, size)                            no
//	optimize        (ptr: i32, len: i32) -> i64            yes
//	_initialize     ()                                     no (reactor init)
//
// optimize returns a packed result: the low 32 bits are the byte length, bits
// 32..62 the pointer and bit 63 flags the bytes as an error message rather
// than a document. See PackResult.
//
// Guests that import wasi_snapshot_preview1 get it instantiated once per
// engine. Any other import is reported as a MissingImportsError at load time.
//
// # Failure Handling
//
// A trap (Rust panic, unreachable, out-of-bounds access) marks the instance
// broken. Callers should close broken instances and create a new one; the
// captured stderr tail is attached to the returned error.
package engine
