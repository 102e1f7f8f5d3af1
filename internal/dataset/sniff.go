package dataset

import "strconv"

// looksInt quickly checks if a string is likely an integer.
func looksInt(str string) bool {
	if len(str) == 0 || len(str) > 19 {
		return false
	}

	i := 0
	if str[0] == '-' || str[0] == '+' {
		if len(str) == 1 {
			return false
		}
		i = 1
	}

	for ; i < len(str); i++ {
		c := str[i]
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// looksFloat quickly checks if a string is likely a float.
func looksFloat(str string) bool {
	if len(str) == 0 || len(str) > 24 {
		return false
	}

	hasDot := false
	hasExp := false
	hasDigit := false
	i := 0

	if str[0] == '-' || str[0] == '+' {
		if len(str) == 1 {
			return false
		}
		i = 1
	}

	for ; i < len(str); i++ {
		c := str[i]
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '.':
			if hasDot || hasExp {
				return false
			}
			hasDot = true
		case c == 'e' || c == 'E':
			if hasExp || !hasDigit || i == len(str)-1 {
				return false
			}
			hasExp = true
		case c == '-' || c == '+':
			if str[i-1] != 'e' && str[i-1] != 'E' {
				return false
			}
		default:
			return false
		}
	}
	return hasDigit && (hasDot || hasExp)
}

func parseNum(str string) float64 {
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0
	}
	return f
}
