package memory

// memoryModule builds a wasm binary whose only content is a memory with the
// given limits, exported as "memory".
func memoryModule(initial, max uint32) []byte {
	var wasm []byte

	// Magic and version
	wasm = append(wasm, 0x00, 0x61, 0x73, 0x6d)
	wasm = append(wasm, 0x01, 0x00, 0x00, 0x00)

	// Memory section: one memory, limits with maximum
	var mem []byte
	mem = append(mem, 0x01, 0x01)
	mem = append(mem, encodeULEB128(initial)...)
	mem = append(mem, encodeULEB128(max)...)
	wasm = append(wasm, 0x05)
	wasm = append(wasm, encodeULEB128(uint32(len(mem)))...)
	wasm = append(wasm, mem...)

	// Export section: "memory" -> memory 0
	name := "memory"
	var exp []byte
	exp = append(exp, 0x01)
	exp = append(exp, encodeULEB128(uint32(len(name)))...)
	exp = append(exp, name...)
	exp = append(exp, 0x02, 0x00)
	wasm = append(wasm, 0x07)
	wasm = append(wasm, encodeULEB128(uint32(len(exp)))...)
	wasm = append(wasm, exp...)

	return wasm
}

func encodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			break
		}
	}
	return result
}
