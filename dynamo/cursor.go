package dynamo

import (
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Account listing cursors are the DynamoDB page key of the last account
// handed to the caller, JSON-encoded and base64 wrapped so clients treat
// them as opaque.

func pageKeyToCursor(pageKey map[string]types.AttributeValue) (string, error) {
	bytesJSON, err := attributevalue.MarshalMapJSON(pageKey)
	if err != nil {
		return "", fmt.Errorf("failed to encode page key to JSON: %w", err)
	}

	return base64.StdEncoding.EncodeToString(bytesJSON), nil
}

func cursorToPageKey(cursor string) (map[string]types.AttributeValue, error) {
	bytesJSON, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to b64 decode cursor: %w", err)
	}

	pageKey, err := attributevalue.UnmarshalMapJSON(bytesJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page key JSON: %w", err)
	}

	return pageKey, nil
}

// accountPageKey projects the index key attributes out of an account item,
// so the next page restarts exactly after it.
func accountPageKey(key map[string]types.AttributeValue, item map[string]types.AttributeValue) map[string]types.AttributeValue {
	result := map[string]types.AttributeValue{}
	for k := range key {
		result[k] = item[k]
	}
	return result
}
