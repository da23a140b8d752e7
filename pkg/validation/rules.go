package validation

import "fmt"

// MaxMessageLength bounds the message text accepted for analysis
const MaxMessageLength = 10000

// ValidateAmount validates monetary amount
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("amount cannot be negative: %f", amount)
	}
	if amount > 100000 {
		return fmt.Errorf("amount exceeds maximum allowed: %f", amount)
	}
	return nil
}
