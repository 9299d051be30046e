package credits

import "strings"

// WorksheetCost returns the credit cost of a worksheet request. The base
// credit covers up to 10 questions; every further block of up to 10
// questions adds one credit. Kindergarten through 2nd grade worksheets
// embed generated images and cost one extra credit. Unknown grade levels
// simply skip the surcharge.
func WorksheetCost(questionCount int, gradeLevel string) int {
	cost := 1

	if questionCount > 10 {
		cost += (questionCount - 10 + 9) / 10
	}

	switch strings.ToUpper(gradeLevel) {
	case "K", "1", "2":
		cost++
	}

	return cost
}
