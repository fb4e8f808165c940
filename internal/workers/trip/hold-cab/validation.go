// internal/workers/trip/hold-cab/validation.go
package holdcab

import (
	"fmt"
	"regexp"
	"strings"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/validation"
)

// CountryCode is fixed; the booking backend serves Indian mobiles only.
const CountryCode = "+91"

var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
var mobileStrip = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// NormalizeGender maps free-form gender input onto M/F/O.
func NormalizeGender(gender string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case "m", "male":
		return "M", nil
	case "f", "female":
		return "F", nil
	case "o", "other":
		return "O", nil
	default:
		return "", cerrors.NewValidationError(
			fmt.Sprintf("gender must be male, female or other, got '%s'", gender))
	}
}

// NormalizeMobile strips separators and an optional +91/91 prefix, then
// checks for a valid 10-digit Indian mobile number.
func NormalizeMobile(mobile string) (string, error) {
	m := mobileStrip.Replace(strings.TrimSpace(mobile))
	m = strings.TrimPrefix(m, "+91")
	if len(m) > 10 && strings.HasPrefix(m, "91") {
		m = m[2:]
	}
	if !mobilePattern.MatchString(m) {
		return "", cerrors.NewValidationError(
			"mobile must be a valid 10-digit Indian mobile number")
	}
	return m, nil
}

// NormalizeEmail lowercases and checks basic email shape.
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if !validation.ValidateEmail(e) {
		return "", cerrors.NewValidationError(fmt.Sprintf("invalid email address '%s'", email))
	}
	return e, nil
}

// GetInputSchema describes the hold input for the activity registry.
func GetInputSchema() validation.JSONSchema {
	genderEnum := []string{"male", "female", "other", "m", "f", "o", "M", "F", "O"}
	minName := 1
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"searchId":      {Type: "string", Description: "Search session identifier"},
			"cabId":         {Type: "string", Description: "Cab selected from the search results"},
			"category":      {Type: "string", Description: "Cab category of the selection"},
			"passengerName": {Type: "string", MinLength: &minName},
			"gender":        {Type: "string", Enum: genderEnum},
			"mobile":        {Type: "string", Description: "Indian mobile number, +91/91 prefix allowed"},
			"email":         {Type: "string"},
		},
		Required: []string{"searchId", "cabId", "category", "passengerName", "gender", "mobile", "email"},
	}
}

// validateInput normalizes the passenger block in place.
func validateInput(input *Input) error {
	var problems []string

	if strings.TrimSpace(input.SearchID) == "" {
		problems = append(problems, "searchId is required")
	}
	if strings.TrimSpace(input.CabID) == "" {
		problems = append(problems, "cabId is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		problems = append(problems, "category is required")
	}
	if strings.TrimSpace(input.PassengerName) == "" {
		problems = append(problems, "passengerName is required")
	}

	if len(problems) > 0 {
		return cerrors.NewValidationError(strings.Join(problems, "; "))
	}

	gender, err := NormalizeGender(input.Gender)
	if err != nil {
		return err
	}
	mobile, err := NormalizeMobile(input.Mobile)
	if err != nil {
		return err
	}
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return err
	}

	input.PassengerName = strings.TrimSpace(input.PassengerName)
	input.Gender = gender
	input.Mobile = mobile
	input.Email = email
	return nil
}
