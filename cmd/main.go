package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/MGA-Alliance/member-registration/api"
	"github.com/MGA-Alliance/member-registration/billing"
	"github.com/MGA-Alliance/member-registration/dynamo"
	"github.com/MGA-Alliance/member-registration/payments/stripe"
	"github.com/MGA-Alliance/member-registration/verification"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/idtoken"
)

func main() {
	ctx := context.Background()

	settings := getServerSettingsFromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	env := api.LOCAL
	if settings.Env == "PROD" {
		env = api.PROD
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load aws config: %s", err)
	}

	db := dynamo.NewDB(dynamodb.NewFromConfig(awsCfg), settings.TableName)

	codeStore, err := makeCodeStore(ctx, settings)
	if err != nil {
		log.Fatalf("failed to set up verification code store: %s", err)
	}

	emailSender, err := createEmailSender(ctx, logger, env, awsCfg)
	if err != nil {
		log.Fatalf("failed to set up email sender: %s", err)
	}

	stripeKey, err := getStripeKey(ctx, settings, awsCfg)
	if err != nil {
		log.Fatalf("failed to get stripe key: %s", err)
	}

	memberAPI := api.NewAPI(
		db,
		stripe.NewCheckoutManager(stripeKey),
		billing.NewEmailInvoicer(emailSender, settings.FromAddress, settings.BillingDeskAddress),
		codeStore,
		verification.NewEmailCodeSender(emailSender, settings.FromAddress),
		emailSender,
		&googleIdVerifier{},
		logger,
		api.Config{
			Env:                env,
			FromAddress:        settings.FromAddress,
			CheckoutSuccessURL: settings.CheckoutSuccessURL,
			CheckoutCancelURL:  settings.CheckoutCancelURL,
		},
	)

	s := &http.Server{
		Handler: memberAPI.Handler(),
		Addr:    net.JoinHostPort(settings.Host, settings.Port),
	}

	logger.Info("starting member registration API", slog.String("addr", s.Addr))

	log.Fatal(s.ListenAndServe())
}

type googleIdVerifier struct{}

func (g *googleIdVerifier) Validate(ctx context.Context, token string, audience string) (*idtoken.Payload, error) {
	return idtoken.Validate(ctx, token, audience)
}

func makeCodeStore(ctx context.Context, settings ServerSettings) (verification.CodeStore, error) {
	if settings.RedisURL == "" {
		return verification.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(settings.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return verification.NewRedisStore(client), nil
}

type ServerSettings struct {
	Host               string
	Port               string
	Env                string
	TableName          string
	RedisURL           string
	FromAddress        string
	BillingDeskAddress string
	CheckoutSuccessURL string
	CheckoutCancelURL  string
	StripeKey          string
	StripeKeySSMParam  string
}

func getServerSettingsFromEnv() ServerSettings {
	return ServerSettings{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "LOCAL"),
		TableName:          getEnvOrDefault("DYNAMO_TABLE_NAME", "MemberRegistration"),
		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		FromAddress:        getEnvOrDefault("FROM_ADDRESS", "MGA Alliance <membership@mga-alliance.org>"),
		BillingDeskAddress: getEnvOrDefault("BILLING_DESK_ADDRESS", "billing@mga-alliance.org"),
		CheckoutSuccessURL: getEnvOrDefault("CHECKOUT_SUCCESS_URL", "https://mga-alliance.org/register/complete"),
		CheckoutCancelURL:  getEnvOrDefault("CHECKOUT_CANCEL_URL", "https://mga-alliance.org/register/payment"),
		StripeKey:          getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		StripeKeySSMParam:  getEnvOrDefault("STRIPE_KEY_SSM_PARAM", "/member-registration/stripe-secret-key"),
	}
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}
