package account

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

type Status string

const (
	// STATUS_PENDING_PAYMENT is written before the hosted checkout
	// redirect. Checkout failures leave the record in this status for an
	// administrator to reconcile.
	STATUS_PENDING_PAYMENT Status = "PENDING_PAYMENT"
	// STATUS_PENDING_INVOICE is written only after the invoice request
	// was confirmed.
	STATUS_PENDING_INVOICE Status = "PENDING_INVOICE"
	STATUS_ACTIVE          Status = "ACTIVE"
)

type Type string

const (
	TYPE_INDIVIDUAL Type = "INDIVIDUAL"
	TYPE_COMPANY    Type = "COMPANY"
)

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type Account interface {
	GetID() uuid.UUID
	GetEmail() string
	GetName() string
	GetStatus() Status
	Type() Type
}

type IndividualAccount struct {
	ID             uuid.UUID
	Version        int
	CreatedAt      time.Time
	Status         Status
	FirstName      string
	Surname        string
	Email          string
	MailingAddress Address
	AnnualFee      *money.Money
}

func (a IndividualAccount) GetID() uuid.UUID  { return a.ID }
func (a IndividualAccount) GetEmail() string  { return a.Email }
func (a IndividualAccount) GetName() string   { return a.FirstName + " " + a.Surname }
func (a IndividualAccount) GetStatus() Status { return a.Status }
func (a IndividualAccount) Type() Type        { return TYPE_INDIVIDUAL }

// MemberRecord is one contact under a company account. Exactly one per
// company has IsPrimaryContact set; that person administers billing.
type MemberRecord struct {
	ID               string
	FirstName        string
	LastName         string
	Name             string
	Email            string
	Phone            string
	JobTitle         string
	IsPrimaryContact bool
}

// CompanyAccount is the stable anchor document for a corporate membership,
// independent of which human is currently the primary contact.
type CompanyAccount struct {
	ID               uuid.UUID
	Version          int
	CreatedAt        time.Time
	Status           Status
	Name             string
	OrganizationType string
	ContactEmail     string
	MailingAddress   Address

	GrossWrittenPremiums string
	GWPCurrency          string
	PrincipalLines       string
	AdditionalLines      string
	TargetClients        string
	CurrentMarkets       string
	PlannedMarkets       string
	OtherAssociations    []string

	Members   []MemberRecord
	AnnualFee *money.Money
}

func (a CompanyAccount) GetID() uuid.UUID  { return a.ID }
func (a CompanyAccount) GetEmail() string  { return a.ContactEmail }
func (a CompanyAccount) GetName() string   { return a.Name }
func (a CompanyAccount) GetStatus() Status { return a.Status }
func (a CompanyAccount) Type() Type        { return TYPE_COMPANY }

type GetAccountsResponse struct {
	Data        []Account
	Cursor      *string
	HasNextPage bool
}

type Repository interface {
	// CreateAccount writes a single flat individual account document.
	CreateAccount(ctx context.Context, acct IndividualAccount) error
	// CreateCompanyWithMembers writes the company document and one member
	// sub-document per roster entry in a single atomic write. Partial
	// writes must never be observable.
	CreateCompanyWithMembers(ctx context.Context, company CompanyAccount) error
	GetAccount(ctx context.Context, id uuid.UUID) (Account, error)
	GetAccounts(ctx context.Context, limit int32, cursor *string) (GetAccountsResponse, error)
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, status Status) (Account, error)
}
