package codec

// gf256.go implements the Galois field GF(2^8) arithmetic used by the QR
// standard's Reed-Solomon codewords (primitive polynomial x^8+x^4+x^3+x^2+1,
// i.e. 0x11D), independent of the erasure package's own Reed-Solomon
// implementation: QR codewords are generated by a specific generator
// polynomial defined in ISO/IEC 18004, not the Vandermonde-matrix scheme
// erasure.Coder uses, so the two are not interchangeable.

var gf256Exp [512]byte
var gf256Log [256]byte

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		gf256Exp[i] = byte(x)
		gf256Log[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= 0x11D
		}
	}
	for i := 255; i < 512; i++ {
		gf256Exp[i] = gf256Exp[i-255]
	}
}

func gf256Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gf256Exp[int(gf256Log[a])+int(gf256Log[b])]
}

func gf256Pow(base byte, exp int) byte {
	if exp == 0 {
		return 1
	}
	if base == 0 {
		return 0
	}
	e := (int(gf256Log[base]) * exp) % 255
	if e < 0 {
		e += 255
	}
	return gf256Exp[e]
}

// polyEval evaluates a codeword polynomial (coefficients in codeword order,
// coeffs[0] is the highest-degree term) at x using Horner's method.
func polyEval(coeffs []byte, x byte) byte {
	var result byte
	for _, c := range coeffs {
		result = gf256Mul(result, x) ^ c
	}
	return result
}
