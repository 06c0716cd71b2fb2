package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatINR renders integer rupees with Indian digit grouping, e.g. Rs 1,23,456.
func FormatINR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sRs %s", sign, groupIndian(amount))
}

// Percent returns round(amount * pct / 100) with half away from zero.
func Percent(amount int64, pct float64) int64 {
	return int64(math.Round(float64(amount) * pct / 100))
}

func groupIndian(n int64) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 {
		return str
	}
	head, tail := str[:len(str)-3], str[len(str)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
