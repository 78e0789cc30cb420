package domain

import "strconv"

var fileSizeUnits = [...]string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize возвращает размер в человекочитаемом виде с ровно decimals
// знаками после запятой: FormatFileSize(1024, 2) == "1.00 KB".
func FormatFileSize(bytes int64, decimals int) string {
	if bytes < 0 {
		bytes = 0
	}
	if decimals < 0 {
		decimals = 0
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(fileSizeUnits)-1 {
		value /= 1024
		unit++
	}

	return strconv.FormatFloat(value, 'f', decimals, 64) + " " + fileSizeUnits[unit]
}
