package mrz

var weights = [3]int{7, 3, 1}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		// '<' filler and anything unexpected count as zero.
		return 0
	}
}

// Checksum computes the ICAO 9303 check digit of data: the sum of character
// values weighted 7, 3, 1 cyclically, modulo 10.
func Checksum(data string) int {
	sum := 0
	for i := 0; i < len(data); i++ {
		sum += charValue(data[i]) * weights[i%len(weights)]
	}
	return sum % 10
}

// VerifyCheckDigit reports whether check is a single ASCII digit equal to
// Checksum(data). Filler or letters in the check position never verify.
func VerifyCheckDigit(data, check string) bool {
	if len(check) != 1 || check[0] < '0' || check[0] > '9' {
		return false
	}
	return Checksum(data) == int(check[0]-'0')
}
