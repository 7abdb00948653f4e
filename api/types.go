package api

import (
	"encoding/json"
	"net/http"

	"github.com/MGA-Alliance/member-registration/signup"
	"github.com/MGA-Alliance/member-registration/slices"
)

type ErrorCode string

const (
	EmptyBody            ErrorCode = "EmptyBody"
	InvalidBody          ErrorCode = "InvalidBody"
	InputValidationError ErrorCode = "InputValidationError"
	VerificationRequired ErrorCode = "VerificationRequired"
	VerificationFailed   ErrorCode = "VerificationFailed"
	LimitOutOfBounds     ErrorCode = "LimitOutOfBounds"
	InvalidCursor        ErrorCode = "InvalidCursor"
	NotFound             ErrorCode = "NotFound"
	AlreadyExists        ErrorCode = "AlreadyExists"
	AuthError            ErrorCode = "AuthError"
	PaymentError         ErrorCode = "PaymentError"
	InternalError        ErrorCode = "InternalError"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type AddressBody struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country"`
}

type MemberBody struct {
	Id               string `json:"id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Name             string `json:"name,omitempty"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	JobTitle         string `json:"jobTitle,omitempty"`
	IsPrimaryContact bool   `json:"isPrimaryContact"`
}

type GWPInputsBody struct {
	Billions  string `json:"billions,omitempty"`
	Millions  string `json:"millions,omitempty"`
	Thousands string `json:"thousands,omitempty"`
	Hundreds  string `json:"hundreds,omitempty"`
}

// RegistrationStateBody is the wizard state as the client holds it. The
// derived premium total is recomputed server side, never trusted from the
// body.
type RegistrationStateBody struct {
	Step int `json:"step"`

	FirstName       string `json:"firstName"`
	Surname         string `json:"surname"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`

	MembershipType   string `json:"membershipType"`
	OrganizationName string `json:"organizationName,omitempty"`
	OrganizationType string `json:"organizationType,omitempty"`

	Members []MemberBody `json:"members,omitempty"`

	Address AddressBody `json:"address"`

	GwpInputs   GWPInputsBody `json:"gwpInputs"`
	GwpCurrency string        `json:"gwpCurrency,omitempty"`

	PrincipalLines  string `json:"principalLines,omitempty"`
	AdditionalLines string `json:"additionalLines,omitempty"`
	TargetClients   string `json:"targetClients,omitempty"`
	CurrentMarkets  string `json:"currentMarkets,omitempty"`
	PlannedMarkets  string `json:"plannedMarkets,omitempty"`

	HasOtherAssociations *bool    `json:"hasOtherAssociations"`
	OtherAssociations    []string `json:"otherAssociations,omitempty"`

	DataNoticeConsent    bool `json:"dataNoticeConsent"`
	CodeOfConductConsent bool `json:"codeOfConductConsent"`

	IsAdminTest bool `json:"isAdminTest,omitempty"`
}

func apiStateToState(body RegistrationStateBody) *signup.State {
	s := signup.NewState()

	s.Step = signup.Step(body.Step)
	s.FirstName = body.FirstName
	s.Surname = body.Surname
	s.Email = body.Email
	s.Password = body.Password
	s.ConfirmPassword = body.ConfirmPassword

	s.MembershipType = signup.MembershipType(body.MembershipType)
	s.OrganizationName = body.OrganizationName
	s.OrganizationType = signup.OrganizationType(body.OrganizationType)

	s.Members = slices.Map(body.Members, func(m MemberBody) signup.Member {
		return signup.Member{
			ID:               m.Id,
			FirstName:        m.FirstName,
			LastName:         m.LastName,
			Name:             m.Name,
			Email:            m.Email,
			Phone:            m.Phone,
			JobTitle:         m.JobTitle,
			IsPrimaryContact: m.IsPrimaryContact,
		}
	})

	s.MemberAddress = signup.Address{
		Line1:      body.Address.Line1,
		Line2:      body.Address.Line2,
		City:       body.Address.City,
		State:      body.Address.State,
		PostalCode: body.Address.PostalCode,
		Country:    body.Address.Country,
	}

	s.GWPInputs = signup.GWPInputs{
		Billions:  body.GwpInputs.Billions,
		Millions:  body.GwpInputs.Millions,
		Thousands: body.GwpInputs.Thousands,
		Hundreds:  body.GwpInputs.Hundreds,
	}
	if body.GwpCurrency != "" {
		s.GWPCurrency = signup.Currency(body.GwpCurrency)
	}
	s.RecomputeGWP()

	s.PrincipalLines = body.PrincipalLines
	s.AdditionalLines = body.AdditionalLines
	s.TargetClients = body.TargetClients
	s.CurrentMarkets = body.CurrentMarkets
	s.PlannedMarkets = body.PlannedMarkets

	s.HasOtherAssociations = body.HasOtherAssociations
	s.OtherAssociations = body.OtherAssociations

	s.DataNoticeConsent = body.DataNoticeConsent
	s.CodeOfConductConsent = body.CodeOfConductConsent
	s.IsAdminTest = body.IsAdminTest

	return s
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, statusCode int, code ErrorCode, message string) {
	writeJSON(w, statusCode, Error{Code: code, Message: message})
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if r.Body == nil {
		writeJSONError(w, http.StatusBadRequest, EmptyBody, "Must specify a body")
		return false
	}

	err := json.NewDecoder(r.Body).Decode(into)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Invalid body")
		return false
	}
	return true
}
