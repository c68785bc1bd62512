package utils

import "strconv"

// FormatVND renders an amount with dot thousand separators and the đ suffix, e.g. 1.250.000đ.
func FormatVND(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	str := strconv.FormatInt(amount, 10)
	n := len(str)

	result := make([]byte, 0, n+n/3)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			result = append(result, '.')
		}
		result = append(result, str[i])
	}
	return sign + string(result) + "đ"
}
