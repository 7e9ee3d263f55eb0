package auth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"go.uber.org/zap"
)

// CognitoGetUserAPI is the subset of the Cognito client the validator uses.
type CognitoGetUserAPI interface {
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
}

// CognitoValidator resolves a raw Cognito access token to a claim set via
// the GetUser API. Used outside Lambda, where no gateway authorizer has run.
type CognitoValidator struct {
	client CognitoGetUserAPI
	logger *zap.Logger
}

// NewCognitoValidator creates a new CognitoValidator
func NewCognitoValidator(client CognitoGetUserAPI, logger *zap.Logger) *CognitoValidator {
	return &CognitoValidator{
		client: client,
		logger: logger,
	}
}

// ValidateAccessToken looks the token up against Cognito and returns the
// user's attributes as a claim map.
func (v *CognitoValidator) ValidateAccessToken(ctx context.Context, accessToken string) (map[string]string, error) {
	out, err := v.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		v.logger.Warn("Error validating access token", zap.Error(err))
		return nil, fmt.Errorf("failed to validate access token: %w", err)
	}

	claims := make(map[string]string, len(out.UserAttributes)+1)
	for _, attr := range out.UserAttributes {
		if attr.Name != nil {
			claims[*attr.Name] = aws.ToString(attr.Value)
		}
	}
	if _, ok := claims["sub"]; !ok {
		claims["sub"] = aws.ToString(out.Username)
	}

	return claims, nil
}
