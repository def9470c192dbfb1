package bytereader

import "bytes"

// FindBytes returns the position of the first occurrence of target at or after from, or -1.
func FindBytes(data []byte, from int, target []byte) int {
	if len(target) == 0 || from < 0 || from >= len(data) {
		return -1
	}
	i := bytes.Index(data[from:], target)
	if i < 0 {
		return -1
	}
	return from + i
}

// FindASCII returns the position of the first occurrence of s at or after from, or -1.
func FindASCII(data []byte, from int, s string) int {
	return FindBytes(data, from, []byte(s))
}

// ExtendFind grows a run of bytes satisfying check in both directions from pos.
// It returns the start of the run and the run itself, or -1 and nil when
// the byte at pos does not match.
func ExtendFind(data []byte, pos int, check func(byte) bool) (int, []byte) {
	if pos < 0 || pos >= len(data) || !check(data[pos]) {
		return -1, nil
	}
	left := pos
	for left > 0 && check(data[left-1]) {
		left--
	}
	right := pos + 1
	for right < len(data) && check(data[right]) {
		right++
	}
	return left, data[left:right]
}

// ExtendFindASCII is ExtendFind returning a string.
func ExtendFindASCII(data []byte, pos int, check func(rune) bool) (int, string) {
	start, b := ExtendFind(data, pos, func(c byte) bool { return check(rune(c)) })
	return start, string(b)
}
