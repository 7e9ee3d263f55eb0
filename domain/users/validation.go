package users

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+\d{1,3}[-\s]?\d{3,4}[-\s]?\d{3,4}[-\s]?\d{3,4}$`)
)

// ValidEmail reports whether email matches the accepted local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone reports whether phone matches the accepted international format.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidAge reports whether age is in the accepted range.
func ValidAge(age int) bool {
	return age > 0 && age <= 120
}

// ValidateCreateUser checks a create payload and returns an ordered list of
// human-readable errors. An empty list means the payload is valid.
func ValidateCreateUser(req *CreateUserRequest) []string {
	var errs []string

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, "Name is required")
	} else if utf8.RuneCountInString(name) < 2 {
		errs = append(errs, "Name must be at least 2 characters long")
	} else if utf8.RuneCountInString(name) > 50 {
		errs = append(errs, "Name must be less than 50 characters")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs = append(errs, "Email is required")
	} else if !ValidEmail(email) {
		errs = append(errs, "Please provide a valid email address")
	}

	if req.Age != nil && !ValidAge(*req.Age) {
		errs = append(errs, "Age must be between 1 and 120")
	}

	if req.Phone != nil {
		if phone := strings.TrimSpace(*req.Phone); phone != "" && !ValidPhone(phone) {
			errs = append(errs, "Please provide a valid phone number (e.g., +51 123 456 789)")
		}
	}

	if req.Address != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Address)) > 200 {
		errs = append(errs, "Address must be less than 200 characters")
	}

	return errs
}

// ValidateUpdateUser checks an update payload with the same per-field rules
// as create, but a field is validated only when it was supplied. A supplied
// empty name or email is an error, not an omission.
func ValidateUpdateUser(req *UpdateUserRequest) []string {
	var errs []string

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			errs = append(errs, "Name cannot be empty")
		} else if utf8.RuneCountInString(name) < 2 {
			errs = append(errs, "Name must be at least 2 characters long")
		} else if utf8.RuneCountInString(name) > 50 {
			errs = append(errs, "Name must be less than 50 characters")
		}
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			errs = append(errs, "Email cannot be empty")
		} else if !ValidEmail(email) {
			errs = append(errs, "Please provide a valid email address")
		}
	}

	if req.Age != nil && !ValidAge(*req.Age) {
		errs = append(errs, "Age must be between 1 and 120")
	}

	if req.Phone != nil {
		if phone := strings.TrimSpace(*req.Phone); phone != "" && !ValidPhone(phone) {
			errs = append(errs, "Please provide a valid phone number (e.g., +51 123 456 789)")
		}
	}

	if req.Address != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Address)) > 200 {
		errs = append(errs, "Address must be less than 200 characters")
	}

	return errs
}
