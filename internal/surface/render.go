package surface

import (
	"fmt"
	"strconv"
	"strings"
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render draws the text view of a state. Nothing is shown until the
// first lookup completes; afterwards exactly one of the weather lines or
// the error line is shown.
func Render(st State) string {
	if st.Result == nil {
		return ""
	}
	if !st.Result.OK() {
		return "Error: " + st.Result.Error
	}
	w := st.Result.Weather
	var b strings.Builder
	if w.City != "" {
		fmt.Fprintf(&b, "%s\n", w.City)
	}
	fmt.Fprintf(&b, "Temperature: %s °C\n", formatNumber(w.Temperature))
	fmt.Fprintf(&b, "Humidity: %s %%", formatNumber(w.Humidity))
	if w.WindSpeed != nil {
		fmt.Fprintf(&b, "\nWind: %s m/s", formatNumber(*w.WindSpeed))
	}
	return b.String()
}
