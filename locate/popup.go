package locate

import (
	"math"
	"strconv"
	"strings"
)

const feetPerMeter = 3.2808399

// PopupText fills the popup template with the accuracy radius. Metric
// distances are shown as given; imperial ones in whole feet.
func PopupText(accuracy float64, metric bool, s Strings) string {
	var distance, unit string
	if metric {
		distance = strconv.FormatFloat(accuracy, 'f', -1, 64)
		unit = s.MetersUnit
	} else {
		distance = strconv.FormatFloat(math.Round(accuracy*feetPerMeter), 'f', 0, 64)
		unit = s.FeetUnit
	}
	text := strings.Replace(s.Popup, "{distance}", distance, 1)
	return strings.Replace(text, "{unit}", unit, 1)
}
