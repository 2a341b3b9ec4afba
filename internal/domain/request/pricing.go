package request

import "math"

// DiscountPercentage is how far an offer's custom price undercuts the
// service's list price, rounded to a whole percent. Zero when there is no
// discount or the list price is not positive.
func DiscountPercentage(customPrice, servicePrice int64) int {
	if servicePrice <= 0 || customPrice >= servicePrice {
		return 0
	}
	if customPrice < 0 {
		customPrice = 0
	}
	return int(math.Round(100 - float64(customPrice)/float64(servicePrice)*100))
}
