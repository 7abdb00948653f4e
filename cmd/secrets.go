package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// getStripeKey resolves the Stripe secret: the environment wins so local
// runs never need SSM, production reads the encrypted parameter.
func getStripeKey(ctx context.Context, settings ServerSettings, awsCfg aws.Config) (string, error) {
	if settings.StripeKey != "" {
		return settings.StripeKey, nil
	}
	if settings.Env != "PROD" {
		// Local default so the server boots without stripe configured;
		// checkout calls will fail until a real key is set.
		return "sk_test_unconfigured", nil
	}

	ssmClient := ssm.NewFromConfig(awsCfg)

	resp, err := ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(settings.StripeKeySSMParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get stripe key from SSM: %w", err)
	}

	return aws.ToString(resp.Parameter.Value), nil
}
