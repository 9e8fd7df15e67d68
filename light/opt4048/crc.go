package opt4048

import "math/bits"

// checkCRC computes the 4-bit check value the device appends to every
// measurement, over exponent e (4 bits), mantissa r (20 bits) and counter c
// (4 bits):
//
//	x0 = XOR of all bits of e, r and c
//	x1 = XOR(c1, c3, e1, e3, r1, r3, ... r19)
//	x2 = XOR(c3, r3, r7, r11, r15, r19, e3)
//	x3 = XOR(r3, r11, r19)
func checkCRC(exponent uint8, mantissa uint32, counter uint8) uint8 {
	r := mantissa & 0xFFFFF
	e := uint32(exponent & 0x0F)
	c := uint32(counter & 0x0F)

	bit := func(v uint32, i uint) uint32 { return (v >> i) & 1 }
	parity := func(v uint32) uint32 { return uint32(bits.OnesCount32(v) & 1) }

	x0 := parity(r) ^ parity(e) ^ parity(c)
	// 0xAAAAA selects the odd bits 1..19 of the mantissa
	x1 := bit(c, 1) ^ bit(c, 3) ^ bit(e, 1) ^ bit(e, 3) ^ parity(r&0xAAAAA)
	x2 := bit(c, 3) ^ bit(e, 3) ^ bit(r, 3) ^ bit(r, 7) ^ bit(r, 11) ^ bit(r, 15) ^ bit(r, 19)
	x3 := bit(r, 3) ^ bit(r, 11) ^ bit(r, 19)

	return uint8(x3<<3 | x2<<2 | x1<<1 | x0)
}
