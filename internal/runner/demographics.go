package runner

import "fmt"

// Gender labels produced by face analysis.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// ValidGender reports whether g is one of the supported gender labels.
func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale
}

// AgeGroup buckets an estimated age into the label stored on the runner record.
func AgeGroup(age int) string {
	switch {
	case age < 20:
		return "teens"
	case age >= 70:
		return "70s+"
	default:
		return fmt.Sprintf("%d0s", age/10)
	}
}
