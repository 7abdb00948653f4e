package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MGA-Alliance/member-registration/account"
	"github.com/MGA-Alliance/member-registration/slices"
	"github.com/Rhymond/go-money"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

var _ account.Repository = &DB{}

const (
	accountEntityName = "ACCOUNT"
	memberEntityName  = "MEMBER"

	// accountListPartition is the constant GSI1 partition every account
	// document lands in, so the admin listing is one Query.
	accountListPartition = "ACCOUNTS"
)

type accountDynamo struct {
	PK     string
	SK     string
	GSI1PK string
	GSI1SK string

	Type    account.Type
	ID      uuid.UUID
	Version int

	CreatedAt time.Time
	Status    account.Status

	// Individual attributes
	FirstName string
	Surname   string
	Email     string

	// Company attributes
	Name                 string
	OrganizationType     string
	ContactEmail         string
	GrossWrittenPremiums string
	GWPCurrency          string
	PrincipalLines       string
	AdditionalLines      string
	TargetClients        string
	CurrentMarkets       string
	PlannedMarkets       string
	OtherAssociations    []string
	NumMembers           int

	MailingAddress account.Address

	FeeAmount   int64
	FeeCurrency string
}

type memberDynamo struct {
	PK string
	SK string

	AccountID        uuid.UUID
	MemberID         string
	FirstName        string
	LastName         string
	Name             string
	Email            string
	Phone            string
	JobTitle         string
	IsPrimaryContact bool
}

func accountPK(id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", accountEntityName, id)
}

func accountSK() string {
	return accountEntityName
}

func memberSK(memberID string) string {
	return fmt.Sprintf("%s#%s", memberEntityName, memberID)
}

func accountListSK(createdAt time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%s#%s", createdAt.UTC().Format(time.RFC3339Nano), id)
}

func individualToDynamo(acct account.IndividualAccount) accountDynamo {
	return accountDynamo{
		PK:             accountPK(acct.ID),
		SK:             accountSK(),
		GSI1PK:         accountListPartition,
		GSI1SK:         accountListSK(acct.CreatedAt, acct.ID),
		Type:           acct.Type(),
		ID:             acct.ID,
		Version:        acct.Version,
		CreatedAt:      acct.CreatedAt,
		Status:         acct.Status,
		FirstName:      acct.FirstName,
		Surname:        acct.Surname,
		Email:          acct.Email,
		MailingAddress: acct.MailingAddress,
		FeeAmount:      acct.AnnualFee.Amount(),
		FeeCurrency:    acct.AnnualFee.Currency().Code,
	}
}

func companyToDynamo(acct account.CompanyAccount) accountDynamo {
	return accountDynamo{
		PK:                   accountPK(acct.ID),
		SK:                   accountSK(),
		GSI1PK:               accountListPartition,
		GSI1SK:               accountListSK(acct.CreatedAt, acct.ID),
		Type:                 acct.Type(),
		ID:                   acct.ID,
		Version:              acct.Version,
		CreatedAt:            acct.CreatedAt,
		Status:               acct.Status,
		Name:                 acct.Name,
		OrganizationType:     acct.OrganizationType,
		ContactEmail:         acct.ContactEmail,
		GrossWrittenPremiums: acct.GrossWrittenPremiums,
		GWPCurrency:          acct.GWPCurrency,
		PrincipalLines:       acct.PrincipalLines,
		AdditionalLines:      acct.AdditionalLines,
		TargetClients:        acct.TargetClients,
		CurrentMarkets:       acct.CurrentMarkets,
		PlannedMarkets:       acct.PlannedMarkets,
		OtherAssociations:    acct.OtherAssociations,
		NumMembers:           len(acct.Members),
		MailingAddress:       acct.MailingAddress,
		FeeAmount:            acct.AnnualFee.Amount(),
		FeeCurrency:          acct.AnnualFee.Currency().Code,
	}
}

func memberToDynamo(accountID uuid.UUID, m account.MemberRecord) memberDynamo {
	return memberDynamo{
		PK:               accountPK(accountID),
		SK:               memberSK(m.ID),
		AccountID:        accountID,
		MemberID:         m.ID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Name:             m.Name,
		Email:            m.Email,
		Phone:            m.Phone,
		JobTitle:         m.JobTitle,
		IsPrimaryContact: m.IsPrimaryContact,
	}
}

func dynamoToAccount(dynAcct accountDynamo, members []memberDynamo) account.Account {
	switch dynAcct.Type {
	case account.TYPE_INDIVIDUAL:
		return account.IndividualAccount{
			ID:             dynAcct.ID,
			Version:        dynAcct.Version,
			CreatedAt:      dynAcct.CreatedAt,
			Status:         dynAcct.Status,
			FirstName:      dynAcct.FirstName,
			Surname:        dynAcct.Surname,
			Email:          dynAcct.Email,
			MailingAddress: dynAcct.MailingAddress,
			AnnualFee:      money.New(dynAcct.FeeAmount, dynAcct.FeeCurrency),
		}
	case account.TYPE_COMPANY:
		return account.CompanyAccount{
			ID:                   dynAcct.ID,
			Version:              dynAcct.Version,
			CreatedAt:            dynAcct.CreatedAt,
			Status:               dynAcct.Status,
			Name:                 dynAcct.Name,
			OrganizationType:     dynAcct.OrganizationType,
			ContactEmail:         dynAcct.ContactEmail,
			GrossWrittenPremiums: dynAcct.GrossWrittenPremiums,
			GWPCurrency:          dynAcct.GWPCurrency,
			PrincipalLines:       dynAcct.PrincipalLines,
			AdditionalLines:      dynAcct.AdditionalLines,
			TargetClients:        dynAcct.TargetClients,
			CurrentMarkets:       dynAcct.CurrentMarkets,
			PlannedMarkets:       dynAcct.PlannedMarkets,
			OtherAssociations:    dynAcct.OtherAssociations,
			MailingAddress:       dynAcct.MailingAddress,
			Members: slices.Map(members, func(m memberDynamo) account.MemberRecord {
				return account.MemberRecord{
					ID:               m.MemberID,
					FirstName:        m.FirstName,
					LastName:         m.LastName,
					Name:             m.Name,
					Email:            m.Email,
					Phone:            m.Phone,
					JobTitle:         m.JobTitle,
					IsPrimaryContact: m.IsPrimaryContact,
				}
			}),
			AnnualFee: money.New(dynAcct.FeeAmount, dynAcct.FeeCurrency),
		}
	default:
		panic("unknown account type")
	}
}

func (d *DB) CreateAccount(ctx context.Context, acct account.IndividualAccount) error {
	dynamoAcct := individualToDynamo(acct)

	item, err := attributevalue.MarshalMap(dynamoAcct)
	if err != nil {
		return account.NewFailedToTranslateToDBModelError("Failed to translate account to dynamo model", err)
	}
	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityVersionConditional(dynamoAcct.Version)))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailedErr) {
			return account.NewAccountAlreadyExistsError(fmt.Sprintf("Account with ID %q already exists", acct.ID), err)
		}
		return account.NewFailedToWriteError("Failed PutItem call", err)
	}

	return nil
}

// CreateCompanyWithMembers writes the company document and every member
// sub-document in one TransactWriteItems call. Either all documents land
// or none do; a half-written company is never observable.
func (d *DB) CreateCompanyWithMembers(ctx context.Context, company account.CompanyAccount) error {
	dynamoAcct := companyToDynamo(company)

	companyItem, err := attributevalue.MarshalMap(dynamoAcct)
	if err != nil {
		return account.NewFailedToTranslateToDBModelError("Failed to translate company to dynamo model", err)
	}
	companyExpr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityVersionConditional(dynamoAcct.Version)))

	transactItems := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:                 aws.String(d.tableName),
				Item:                      companyItem,
				ConditionExpression:       companyExpr.Condition(),
				ExpressionAttributeNames:  companyExpr.Names(),
				ExpressionAttributeValues: companyExpr.Values(),
			},
		},
	}

	for _, m := range company.Members {
		memberItem, err := attributevalue.MarshalMap(memberToDynamo(company.ID, m))
		if err != nil {
			return account.NewFailedToTranslateToDBModelError("Failed to translate member to dynamo model", err)
		}

		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(d.tableName),
				Item:      memberItem,
			},
		})
	}

	_, err = d.dynamoClient.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var transactionFailedErr *types.TransactionCanceledException
		if errors.As(err, &transactionFailedErr) {
			if len(transactionFailedErr.CancellationReasons) > 0 && transactionFailedErr.CancellationReasons[0].Code != nil {
				return account.NewAccountAlreadyExistsError(fmt.Sprintf("Account with ID %q already exists", company.ID), err)
			}
			return account.NewFailedToWriteError("Transaction cancelled", err)
		}
		return account.NewFailedToWriteError("Failed TransactWriteItems call", err)
	}

	return nil
}

func (d *DB) GetAccount(ctx context.Context, id uuid.UUID) (account.Account, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(accountPK(id)))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, account.NewFailedToFetchError(fmt.Sprintf("Failed to fetch account with id %q", id), err)
	}

	if len(result.Items) == 0 {
		return nil, account.NewAccountDoesNotExistError(fmt.Sprintf("Account with id %q not found", id), nil)
	}

	var acctItem *accountDynamo
	var memberItems []memberDynamo
	for _, item := range result.Items {
		sk := item["SK"]
		skStr, ok := sk.(*types.AttributeValueMemberS)
		if !ok {
			continue
		}

		if skStr.Value == accountSK() {
			var dynAcct accountDynamo
			err = attributevalue.UnmarshalMap(item, &dynAcct)
			if err != nil {
				panic(fmt.Sprintf("failed to unmarshal account from dynamo: %s", err))
			}
			acctItem = &dynAcct
		} else {
			var dynMember memberDynamo
			err = attributevalue.UnmarshalMap(item, &dynMember)
			if err != nil {
				panic(fmt.Sprintf("failed to unmarshal member from dynamo: %s", err))
			}
			memberItems = append(memberItems, dynMember)
		}
	}

	if acctItem == nil {
		return nil, account.NewAccountDoesNotExistError(fmt.Sprintf("Account with id %q not found", id), nil)
	}

	return dynamoToAccount(*acctItem, memberItems), nil
}

func (d *DB) GetAccounts(ctx context.Context, limit int32, cursor *string) (account.GetAccountsResponse, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(accountListPartition))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = cursorToPageKey(*cursor)
		if err != nil {
			return account.GetAccountsResponse{}, account.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(d.tableName),
		IndexName:                 aws.String(gsi1),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Fetch 1 more than limit to check if there is another page or not
		Limit:             aws.Int32(limit + 1),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		return account.GetAccountsResponse{}, account.NewFailedToFetchError("Failed to fetch accounts from dynamo", err)
	}

	var dynamoItems []accountDynamo
	err = attributevalue.UnmarshalListOfMaps(result.Items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo accounts: %s", err))
	}

	hasNextPage := len(dynamoItems) > int(limit)

	var newCursor *string
	if hasNextPage && len(result.LastEvaluatedKey) > 0 {
		// LastEvaluatedKey points past the extra probe item, so rebuild
		// the key from the last account actually handed out.
		lastItemGivenToUser := result.Items[len(result.Items)-2]
		lastItemKey := accountPageKey(result.LastEvaluatedKey, lastItemGivenToUser)
		c, err := pageKeyToCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from page key: %s", err))
		}
		newCursor = &c
	}

	// The listing view doesn't need member sub-documents.
	return account.GetAccountsResponse{
		Data: slices.Map(dynamoItems, func(v accountDynamo) account.Account {
			return dynamoToAccount(v, nil)
		})[:min(int(limit), len(dynamoItems))],
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}

func (d *DB) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status account.Status) (account.Account, error) {
	update := expression.Set(expression.Name("Status"), expression.Value(status)).
		Add(expression.Name("Version"), expression.Value(1))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(existingEntityConditional()).
		Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo update expression: %s", err))
	}

	_, err = d.dynamoClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: accountPK(id)},
			"SK": &types.AttributeValueMemberS{Value: accountSK()},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var conditionFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailedErr) {
			return nil, account.NewAccountDoesNotExistError(fmt.Sprintf("Account with id %q not found", id), err)
		}
		return nil, account.NewFailedToWriteError("Failed UpdateItem call", err)
	}

	return d.GetAccount(ctx, id)
}
