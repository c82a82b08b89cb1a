// Package wasmtest assembles small core WebAssembly guests for tests.
//
// Only the handful of sections and instructions the optimizer ABI needs are
// supported: function imports, one memory, mutable i32 globals, function
// and memory exports, and active data segments.
package wasmtest

const (
	I32 byte = 0x7f
	I64 byte = 0x7e
)

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionGlobal   = 6
	sectionExport   = 7
	sectionCode     = 10
	sectionData     = 11

	exportFunc   = 0x00
	exportMemory = 0x02
)

// FuncType is a function signature.
type FuncType struct {
	Params  []byte
	Results []byte
}

// Import is a function import.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Func is a defined function. Body must end with End.
type Func struct {
	Type   FuncType
	Locals []byte
	Body   *Code
	Export string
}

// Segment is an active data segment in memory 0.
type Segment struct {
	Offset uint32
	Data   []byte
}

// Module describes a guest to encode.
type Module struct {
	Imports     []Import
	Funcs       []Func
	Globals     []int32
	Data        []Segment
	MemoryPages uint32
	// ExportMemory names the memory export; empty skips it.
	ExportMemory string
}

// Encode returns the binary module.
func (m *Module) Encode() []byte {
	types, typeIndex := m.collectTypes()

	out := NewWriter()
	out.Byte(0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00)

	section(out, sectionType, func(w *Writer) {
		w.WriteU32(uint32(len(types)))
		for _, t := range types {
			w.Byte(0x60)
			w.WriteBytes(t.Params)
			w.WriteBytes(t.Results)
		}
	})

	if len(m.Imports) > 0 {
		section(out, sectionImport, func(w *Writer) {
			w.WriteU32(uint32(len(m.Imports)))
			for _, imp := range m.Imports {
				w.WriteName(imp.Module)
				w.WriteName(imp.Name)
				w.Byte(0x00)
				w.WriteU32(typeIndex(imp.Type))
			}
		})
	}

	section(out, sectionFunction, func(w *Writer) {
		w.WriteU32(uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			w.WriteU32(typeIndex(f.Type))
		}
	})

	section(out, sectionMemory, func(w *Writer) {
		w.WriteU32(1)
		w.Byte(0x00)
		w.WriteU32(max(m.MemoryPages, 1))
	})

	if len(m.Globals) > 0 {
		section(out, sectionGlobal, func(w *Writer) {
			w.WriteU32(uint32(len(m.Globals)))
			for _, g := range m.Globals {
				w.Byte(I32, 0x01, 0x41)
				w.WriteS32(g)
				w.Byte(0x0b)
			}
		})
	}

	section(out, sectionExport, func(w *Writer) {
		var count uint32
		if m.ExportMemory != "" {
			count++
		}
		for _, f := range m.Funcs {
			if f.Export != "" {
				count++
			}
		}
		w.WriteU32(count)
		if m.ExportMemory != "" {
			w.WriteName(m.ExportMemory)
			w.Byte(exportMemory)
			w.WriteU32(0)
		}
		for i, f := range m.Funcs {
			if f.Export == "" {
				continue
			}
			w.WriteName(f.Export)
			w.Byte(exportFunc)
			w.WriteU32(uint32(len(m.Imports) + i))
		}
	})

	section(out, sectionCode, func(w *Writer) {
		w.WriteU32(uint32(len(m.Funcs)))
		for _, f := range m.Funcs {
			body := NewWriter()
			body.WriteU32(uint32(len(f.Locals)))
			for _, l := range f.Locals {
				body.WriteU32(1)
				body.Byte(l)
			}
			body.Byte(f.Body.Bytes()...)
			w.WriteBytes(body.Bytes())
		}
	})

	if len(m.Data) > 0 {
		section(out, sectionData, func(w *Writer) {
			w.WriteU32(uint32(len(m.Data)))
			for _, seg := range m.Data {
				w.Byte(0x00, 0x41)
				w.WriteS32(int32(seg.Offset))
				w.Byte(0x0b)
				w.WriteBytes(seg.Data)
			}
		})
	}

	return out.Bytes()
}

func (m *Module) collectTypes() ([]FuncType, func(FuncType) uint32) {
	var types []FuncType
	index := func(t FuncType) uint32 {
		for i, have := range types {
			if string(have.Params) == string(t.Params) && string(have.Results) == string(t.Results) {
				return uint32(i)
			}
		}
		types = append(types, t)
		return uint32(len(types) - 1)
	}
	for _, imp := range m.Imports {
		index(imp.Type)
	}
	for _, f := range m.Funcs {
		index(f.Type)
	}
	return types, index
}

func section(out *Writer, id byte, fill func(w *Writer)) {
	w := NewWriter()
	fill(w)
	out.Byte(id)
	out.WriteBytes(w.Bytes())
}
