package signup

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSymbols = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?~`"

// PasswordChecks reports each password rule separately so the form can
// render a live checklist. The password is acceptable iff every field is
// true.
type PasswordChecks struct {
	MinLength    bool
	HasUppercase bool
	HasLowercase bool
	HasDigit     bool
	HasSymbol    bool
}

func (c PasswordChecks) AllMet() bool {
	return c.MinLength && c.HasUppercase && c.HasLowercase && c.HasDigit && c.HasSymbol
}

func ValidatePassword(password string) PasswordChecks {
	checks := PasswordChecks{
		MinLength: len(password) >= 8,
	}

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			checks.HasUppercase = true
		case unicode.IsLower(r):
			checks.HasLowercase = true
		case unicode.IsDigit(r):
			checks.HasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			checks.HasSymbol = true
		}
	}

	return checks
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateStep decides whether the wizard may advance past the state's
// current step. Validators are pure: they inspect the state and return nil
// or a single first-failure validation error, never mutating anything.
func ValidateStep(s *State) error {
	switch s.Step {
	case STEP_DATA_NOTICE:
		return validateDataNotice(s)
	case STEP_CODE_OF_CONDUCT:
		return validateCodeOfConduct(s)
	case STEP_ACCOUNT_INFO:
		return validateAccountInfo(s)
	case STEP_MEMBERSHIP_INFO:
		return validateMembershipInfo(s)
	case STEP_ADDRESS_PORTFOLIO:
		return validateAddressPortfolio(s)
	case STEP_PAYMENT:
		// Terminal step, the wizard ends here.
		return nil
	default:
		return NewValidationError(fmt.Sprintf("Unknown step: %d", s.Step))
	}
}

func validateDataNotice(s *State) error {
	if !s.DataNoticeConsent {
		return NewValidationError("You must accept the data notice to continue")
	}
	return nil
}

func validateCodeOfConduct(s *State) error {
	if !s.CodeOfConductConsent {
		return NewValidationError("You must agree to the code of conduct to continue")
	}
	return nil
}

func validateAccountInfo(s *State) error {
	if strings.TrimSpace(s.FirstName) == "" {
		return NewValidationError("First name is required")
	}
	if strings.TrimSpace(s.Surname) == "" {
		return NewValidationError("Surname is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		return NewValidationError("Email is required")
	}
	if !ValidEmail(s.Email) {
		return NewValidationError("Please enter a valid email address")
	}
	if s.Password == "" {
		return NewValidationError("Password is required")
	}
	if !ValidatePassword(s.Password).AllMet() {
		return NewValidationError("Password does not meet all requirements")
	}
	if s.ConfirmPassword == "" {
		return NewValidationError("Please confirm your password")
	}
	if s.Password != s.ConfirmPassword {
		return NewValidationError("Passwords do not match")
	}
	return nil
}

func validateMembershipInfo(s *State) error {
	if s.EffectiveOrganizationName() == "" {
		if s.MembershipType == MEMBERSHIP_CORPORATE {
			return NewValidationError("Organization name is required")
		}
		return NewValidationError("Full name is required")
	}

	if s.MembershipType != MEMBERSHIP_CORPORATE {
		return nil
	}

	if s.OrganizationType == "" {
		return NewValidationError("Please select an organization type")
	}
	if len(s.Members) == 0 {
		return NewValidationError("At least one member contact is required")
	}
	if s.PrimaryContact() == nil {
		return NewValidationError("Please select a primary contact")
	}

	for i := range s.Members {
		if err := validateMember(&s.Members[i], i); err != nil {
			return err
		}
	}

	return nil
}

// validateMember reports the first missing field of a roster entry. The
// registrant entry carries no phone requirement because it was collected on
// the account info step without one.
func validateMember(m *Member, position int) error {
	label := m.Name
	if label == "" {
		label = fmt.Sprintf("Member %d", position+1)
	}

	if strings.TrimSpace(m.FirstName) == "" {
		return NewValidationError(fmt.Sprintf("%s: first name is required", label))
	}
	if strings.TrimSpace(m.LastName) == "" {
		return NewValidationError(fmt.Sprintf("%s: last name is required", label))
	}
	if strings.TrimSpace(m.Email) == "" {
		return NewValidationError(fmt.Sprintf("%s: email is required", label))
	}
	if m.ID != RegistrantID && strings.TrimSpace(m.Phone) == "" {
		return NewValidationError(fmt.Sprintf("%s: phone number is required", label))
	}
	if strings.TrimSpace(m.JobTitle) == "" {
		return NewValidationError(fmt.Sprintf("%s: job title is required", label))
	}

	return nil
}

func validateAddressPortfolio(s *State) error {
	if strings.TrimSpace(s.MemberAddress.Line1) == "" {
		return NewValidationError("Address line 1 is required")
	}
	if strings.TrimSpace(s.MemberAddress.City) == "" {
		return NewValidationError("City is required")
	}
	if strings.TrimSpace(s.MemberAddress.Country) == "" {
		return NewValidationError("Country is required")
	}

	if s.MembershipType == MEMBERSHIP_CORPORATE && s.OrganizationType == ORG_TYPE_MGA {
		if _, ok := s.GWPAmount(); !ok {
			return NewValidationError("Please enter your gross written premiums")
		}
	}

	if s.HasOtherAssociations == nil {
		return NewValidationError("Please indicate whether you belong to other associations")
	}
	if *s.HasOtherAssociations && len(s.OtherAssociations) == 0 {
		return NewValidationError("Please select at least one association")
	}

	return nil
}
