// Package layout computes C struct layouts for records exchanged through a
// linear memory.
//
// The target is a 64-bit little-endian process. The rules are the ones a C
// compiler applies without packing pragmas:
//   - Primitives: size equals alignment (u8=1, u32=4, f64=8, pointer=8)
//   - Strings: the 32-byte hybrid string image, 8-byte aligned
//   - Arrays: Len elements back to back, aligned like the element
//   - Structs: fields in order, each at the next offset aligned to its own
//     alignment, total size rounded up to the largest field alignment
//
// # Usage
//
//	calc := layout.NewCalculator()
//	info, err := calc.Calculate(&layout.Struct{Fields: fields})
//	// info.Size, info.Align, info.FieldOffs available
package layout
