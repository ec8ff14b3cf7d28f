package scheduler

// ParsePercent extracts a progress percentage from one line of mkvmerge
// GUI-mode output. The parser locates the first '%' and walks backwards
// over the digits immediately preceding it; values outside a byte range
// are rejected, and callers clamp to 100.
func ParsePercent(line string) (int, bool) {
	end := -1
	for i := 0; i < len(line); i++ {
		if line[i] == '%' {
			end = i
			break
		}
	}
	if end <= 0 {
		return 0, false
	}

	start := end
	for start > 0 && isDigit(line[start-1]) {
		start--
	}
	if start == end || end-start > 3 {
		return 0, false
	}

	value := 0
	for i := start; i < end; i++ {
		value = value*10 + int(line[i]-'0')
	}
	if value > 255 {
		return 0, false
	}
	return value, true
}

// ClampPercent bounds a parsed value to the displayable 0..100 range.
func ClampPercent(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
