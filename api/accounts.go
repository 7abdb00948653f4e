package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MGA-Alliance/member-registration/account"
	"github.com/MGA-Alliance/member-registration/slices"
	"github.com/google/uuid"
)

type AccountBody struct {
	Id               string       `json:"id"`
	Type             string       `json:"type"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	Status           string       `json:"status"`
	CreatedAt        time.Time    `json:"createdAt"`
	OrganizationType string       `json:"organizationType,omitempty"`
	AnnualFee        int64        `json:"annualFee,omitempty"`
	FeeCurrency      string       `json:"feeCurrency,omitempty"`
	Members          []MemberBody `json:"members,omitempty"`
}

type GetAccountsResponse struct {
	Data        []AccountBody `json:"data"`
	Cursor      *string       `json:"cursor,omitempty"`
	HasNextPage bool          `json:"hasNextPage"`
}

func (a *API) getAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	limit := 10
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		userLimit, err := strconv.Atoi(limitParam)
		if err != nil || userLimit < 1 || userLimit > 50 {
			writeJSONError(w, http.StatusBadRequest, LimitOutOfBounds, "Limit must be between 1 and 50")
			return
		}
		limit = userLimit
	}

	var cursor *string
	if cursorParam := r.URL.Query().Get("cursor"); cursorParam != "" {
		cursor = &cursorParam
	}

	result, err := a.db.GetAccounts(ctx, int32(limit), cursor)
	if err != nil {
		logger.Error("Failed to get accounts", slog.String("error", err.Error()))

		var accountErr *account.Error
		if errors.As(err, &accountErr) {
			switch accountErr.Reason {
			case account.REASON_INVALID_CURSOR:
				writeJSONError(w, http.StatusBadRequest, InvalidCursor, "Cursor is invalid")
				return
			}
		}
		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to get accounts")
		return
	}

	writeJSON(w, http.StatusOK, GetAccountsResponse{
		Data: slices.Map(result.Data, func(v account.Account) AccountBody {
			return accountToApiAccount(v)
		}),
		Cursor:      result.Cursor,
		HasNextPage: result.HasNextPage,
	})
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (a *API) postAccountStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Account id must be a UUID")
		return
	}

	var body UpdateStatusRequest
	if !decodeJSONBody(w, r, &body) {
		return
	}

	status := account.Status(body.Status)
	switch status {
	case account.STATUS_PENDING_PAYMENT, account.STATUS_PENDING_INVOICE, account.STATUS_ACTIVE:
	default:
		writeJSONError(w, http.StatusBadRequest, InvalidBody, "Unknown account status")
		return
	}

	acct, err := a.db.UpdateAccountStatus(ctx, id, status)
	if err != nil {
		logger.Error("Failed to update account status", slog.String("error", err.Error()), slog.String("accountId", id.String()))

		var accountErr *account.Error
		if errors.As(err, &accountErr) {
			switch accountErr.Reason {
			case account.REASON_ACCOUNT_DOES_NOT_EXIST:
				writeJSONError(w, http.StatusNotFound, NotFound, "Account was not found")
				return
			}
		}
		writeJSONError(w, http.StatusInternalServerError, InternalError, "Failed to update account status")
		return
	}

	writeJSON(w, http.StatusOK, accountToApiAccount(acct))
}

func accountToApiAccount(acct account.Account) AccountBody {
	body := AccountBody{
		Id:     acct.GetID().String(),
		Type:   string(acct.Type()),
		Name:   acct.GetName(),
		Email:  acct.GetEmail(),
		Status: string(acct.GetStatus()),
	}

	switch v := acct.(type) {
	case account.IndividualAccount:
		body.CreatedAt = v.CreatedAt
		if v.AnnualFee != nil {
			body.AnnualFee = v.AnnualFee.Amount()
			body.FeeCurrency = v.AnnualFee.Currency().Code
		}
	case account.CompanyAccount:
		body.CreatedAt = v.CreatedAt
		body.OrganizationType = v.OrganizationType
		if v.AnnualFee != nil {
			body.AnnualFee = v.AnnualFee.Amount()
			body.FeeCurrency = v.AnnualFee.Currency().Code
		}
		body.Members = slices.Map(v.Members, func(m account.MemberRecord) MemberBody {
			return MemberBody{
				Id:               m.ID,
				FirstName:        m.FirstName,
				LastName:         m.LastName,
				Name:             m.Name,
				Email:            m.Email,
				Phone:            m.Phone,
				JobTitle:         m.JobTitle,
				IsPrimaryContact: m.IsPrimaryContact,
			}
		})
	}

	return body
}
