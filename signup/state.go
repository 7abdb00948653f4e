package signup

import (
	"strconv"
	"strings"
)

type Step int

const (
	STEP_DATA_NOTICE Step = iota
	STEP_CODE_OF_CONDUCT
	STEP_ACCOUNT_INFO
	STEP_MEMBERSHIP_INFO
	STEP_ADDRESS_PORTFOLIO
	STEP_PAYMENT
)

type MembershipType string

const (
	MEMBERSHIP_INDIVIDUAL MembershipType = "INDIVIDUAL"
	MEMBERSHIP_CORPORATE  MembershipType = "CORPORATE"
)

type OrganizationType string

const (
	ORG_TYPE_MGA      OrganizationType = "MGA"
	ORG_TYPE_CARRIER  OrganizationType = "CARRIER"
	ORG_TYPE_PROVIDER OrganizationType = "PROVIDER"
)

type Currency string

const (
	CURRENCY_EUR Currency = "EUR"
	CURRENCY_GBP Currency = "GBP"
	CURRENCY_USD Currency = "USD"
)

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// GWPInputs holds the magnitude buckets the form collects instead of one
// huge number field. Values are decimal strings straight from the user.
type GWPInputs struct {
	Billions  string
	Millions  string
	Thousands string
	Hundreds  string
}

// State is the single record owning everything the wizard collects over one
// registration session. Nothing in it persists until an account record is
// written by the completion flow.
type State struct {
	Step          Step
	TouchedFields map[string]bool
	AttemptedNext bool

	FirstName       string
	Surname         string
	Email           string
	Password        string
	ConfirmPassword string

	MembershipType   MembershipType
	OrganizationName string
	OrganizationType OrganizationType

	Members []Member

	MemberAddress Address

	GWPInputs            GWPInputs
	GWPCurrency          Currency
	GrossWrittenPremiums string

	PrincipalLines  string
	AdditionalLines string
	TargetClients   string
	CurrentMarkets  string
	PlannedMarkets  string

	HasOtherAssociations *bool
	OtherAssociations    []string

	Logo *LogoUpload

	DataNoticeConsent    bool
	CodeOfConductConsent bool

	IsAdminTest bool
}

func NewState() *State {
	return &State{
		Step:          STEP_DATA_NOTICE,
		TouchedFields: map[string]bool{},
		GWPCurrency:   CURRENCY_EUR,
	}
}

func (s *State) TouchField(field string) {
	if s.TouchedFields == nil {
		s.TouchedFields = map[string]bool{}
	}
	s.TouchedFields[field] = true
}

func (s *State) FieldTouched(field string) bool {
	return s.TouchedFields[field]
}

func (s *State) MarkAttemptedNext() {
	s.AttemptedNext = true
}

// AdvanceStep moves the wizard forward only when the current step's
// validator passes. On failure AttemptedNext is set so every outstanding
// error is shown at once.
func (s *State) AdvanceStep() error {
	if s.Step >= STEP_PAYMENT {
		return nil
	}

	if err := ValidateStep(s); err != nil {
		s.MarkAttemptedNext()
		return err
	}

	s.Step++
	s.AttemptedNext = false
	return nil
}

// RetreatStep moves backward freely; earlier steps were already validated.
func (s *State) RetreatStep() {
	if s.Step > STEP_DATA_NOTICE {
		s.Step--
	}
}

// EffectiveOrganizationName is the display name the account is created
// under: the person's full name for individuals, the organization name for
// corporate memberships.
func (s *State) EffectiveOrganizationName() string {
	if s.MembershipType == MEMBERSHIP_CORPORATE {
		return strings.TrimSpace(s.OrganizationName)
	}
	return strings.TrimSpace(s.FirstName + " " + s.Surname)
}

// SetGWPInput writes one magnitude bucket and recomputes the canonical
// GrossWrittenPremiums total, so the derived value is always fresh after
// the mutation returns.
func (s *State) SetGWPInput(bucket string, value string) {
	switch bucket {
	case "billions":
		s.GWPInputs.Billions = value
	case "millions":
		s.GWPInputs.Millions = value
	case "thousands":
		s.GWPInputs.Thousands = value
	case "hundreds":
		s.GWPInputs.Hundreds = value
	}
	s.RecomputeGWP()
}

// RecomputeGWP reconstructs the total premium from the magnitude buckets.
// Non-numeric buckets count as zero. An entirely blank input leaves the
// canonical field blank so validation can distinguish "unanswered".
func (s *State) RecomputeGWP() {
	if s.GWPInputs == (GWPInputs{}) {
		s.GrossWrittenPremiums = ""
		return
	}

	total := bucketValue(s.GWPInputs.Billions)*1e9 +
		bucketValue(s.GWPInputs.Millions)*1e6 +
		bucketValue(s.GWPInputs.Thousands)*1e3 +
		bucketValue(s.GWPInputs.Hundreds)

	s.GrossWrittenPremiums = strconv.FormatInt(total, 10)
}

// GWPAmount returns the canonical premium total, with ok=false when the
// field is blank or not a number.
func (s *State) GWPAmount() (int64, bool) {
	if s.GrossWrittenPremiums == "" {
		return 0, false
	}

	amount, err := strconv.ParseInt(s.GrossWrittenPremiums, 10, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func bucketValue(input string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
