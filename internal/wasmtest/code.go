package wasmtest

// Code is an instruction sequence builder.
type Code struct {
	w *Writer
}

// NewCode starts an empty instruction sequence.
func NewCode() *Code {
	return &Code{w: NewWriter()}
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte {
	return c.w.Bytes()
}

func (c *Code) op(b ...byte) *Code {
	c.w.Byte(b...)
	return c
}

func (c *Code) LocalGet(i uint32) *Code {
	c.op(0x20)
	c.w.WriteU32(i)
	return c
}

func (c *Code) LocalSet(i uint32) *Code {
	c.op(0x21)
	c.w.WriteU32(i)
	return c
}

func (c *Code) GlobalGet(i uint32) *Code {
	c.op(0x23)
	c.w.WriteU32(i)
	return c
}

func (c *Code) GlobalSet(i uint32) *Code {
	c.op(0x24)
	c.w.WriteU32(i)
	return c
}

func (c *Code) Call(i uint32) *Code {
	c.op(0x10)
	c.w.WriteU32(i)
	return c
}

func (c *Code) I32Const(v int32) *Code {
	c.op(0x41)
	c.w.WriteS32(v)
	return c
}

func (c *Code) I64Const(v int64) *Code {
	c.op(0x42)
	c.w.WriteS64(v)
	return c
}

// I32Load8U loads one byte with zero alignment and offset.
func (c *Code) I32Load8U() *Code { return c.op(0x2d, 0x00, 0x00) }

func (c *Code) I32Add() *Code { return c.op(0x6a) }

func (c *Code) I32Eqz() *Code { return c.op(0x45) }

func (c *Code) I32Ne() *Code { return c.op(0x47) }

func (c *Code) I64ExtendI32U() *Code { return c.op(0xad) }

func (c *Code) I64Shl() *Code { return c.op(0x86) }

func (c *Code) I64Or() *Code { return c.op(0x84) }

func (c *Code) Drop() *Code { return c.op(0x1a) }

func (c *Code) Unreachable() *Code { return c.op(0x00) }

func (c *Code) Return() *Code { return c.op(0x0f) }

func (c *Code) If() *Code { return c.op(0x04, 0x40) }

func (c *Code) End() *Code { return c.op(0x0b) }

// PackLocals pushes (local ptr as i64) << 32 | (local length as i64).
func (c *Code) PackLocals(ptr, length uint32) *Code {
	return c.LocalGet(ptr).I64ExtendI32U().I64Const(32).I64Shl().
		LocalGet(length).I64ExtendI32U().I64Or()
}
