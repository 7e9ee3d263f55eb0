// Package auth reads caller identity from pre-verified claim sets. Token
// signatures are verified upstream (the API Gateway JWT authorizer in
// production, the bearer middleware locally); nothing here re-validates them.
package auth

import (
	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// CognitoUser is the caller identity asserted by a pre-verified token.
type CognitoUser struct {
	Sub           string
	Email         string
	EmailVerified bool
	Claims        map[string]string
}

// ExtractUserFromEvent reads the claim set the gateway authorizer attached
// to the request envelope. A missing or partial claim set yields nil: the
// caller proceeds as anonymous, it is not rejected.
func ExtractUserFromEvent(event events.APIGatewayV2HTTPRequest, logger *zap.Logger) *CognitoUser {
	authorizer := event.RequestContext.Authorizer
	if authorizer == nil || authorizer.JWT == nil || len(authorizer.JWT.Claims) == 0 {
		logger.Warn("No JWT claims found in request context")
		return nil
	}

	return UserFromClaims(authorizer.JWT.Claims)
}

// UserFromClaims builds a CognitoUser from a raw claim map.
func UserFromClaims(claims map[string]string) *CognitoUser {
	if len(claims) == 0 {
		return nil
	}
	return &CognitoUser{
		Sub:           claims["sub"],
		Email:         claims["email"],
		EmailVerified: claims["email_verified"] == "true",
		Claims:        claims,
	}
}
