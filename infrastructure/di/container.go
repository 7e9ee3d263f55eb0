// Package di wires configuration, AWS clients, repositories, services and
// the dispatcher into a process-wide container, built once per cold start.
package di

import (
	"context"
	"fmt"

	"users-backend/application/services"
	"users-backend/infrastructure/config"
	dynamorepo "users-backend/infrastructure/persistence/dynamodb"
	"users-backend/interfaces/apigateway"
	"users-backend/pkg/auth"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
)

// Container holds the dependency graph
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	DynamoDBClient *dynamodb.Client
	CognitoClient  *cognitoidentityprovider.Client
	UserRepository *dynamorepo.UserRepository
	UserService    *services.UserService
	TokenValidator *auth.CognitoValidator
	Dispatcher     *apigateway.Dispatcher
}

// NewContainer builds the container from configuration
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	cognitoClient := cognitoidentityprovider.NewFromConfig(awsCfg)

	repo := dynamorepo.NewUserRepository(dynamoClient, cfg.TableName, logger)
	service := services.NewUserService(repo, logger)
	validator := auth.NewCognitoValidator(cognitoClient, logger)
	dispatcher := apigateway.NewDispatcher(service, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		DynamoDBClient: dynamoClient,
		CognitoClient:  cognitoClient,
		UserRepository: repo,
		UserService:    service,
		TokenValidator: validator,
		Dispatcher:     dispatcher,
	}, nil
}

// ProvideLogger creates the application logger
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = level
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration, with optional X-Ray
// instrumentation of all AWS clients.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}

	return awsCfg, nil
}
