package apigateway

import (
	"encoding/json"

	"users-backend/domain/users"

	"github.com/aws/aws-lambda-go/events"
)

type userResponse struct {
	Message string      `json:"message"`
	User    *users.User `json:"user"`
}

type usersResponse struct {
	Message string       `json:"message"`
	Users   []users.User `json:"users"`
	Count   int          `json:"count"`
	HasMore bool         `json:"hasMore"`
}

type deleteResponse struct {
	Message     string      `json:"message"`
	DeletedUser *users.User `json:"deletedUser"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponseBody struct {
	Message    string   `json:"message"`
	StatusCode int      `json:"statusCode"`
	Error      string   `json:"error,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// newResponse wraps a status code and body into the outbound envelope with
// the fixed header set: JSON content type and permissive CORS.
func newResponse(statusCode int, body interface{}) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		statusCode = 500
		payload = []byte(`{"message":"Internal server error","statusCode":500}`)
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Headers": "Content-Type,Authorization",
			"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
		},
		Body: string(payload),
	}
}

func errorResponse(message string, statusCode int) events.APIGatewayV2HTTPResponse {
	return newResponse(statusCode, errorResponseBody{
		Message:    message,
		StatusCode: statusCode,
	})
}

func errorResponseWithDetail(message string, statusCode int, detail string) events.APIGatewayV2HTTPResponse {
	return newResponse(statusCode, errorResponseBody{
		Message:    message,
		StatusCode: statusCode,
		Error:      detail,
	})
}

func validationErrorResponse(errs []string) events.APIGatewayV2HTTPResponse {
	return newResponse(400, errorResponseBody{
		Message:    "Validation failed",
		StatusCode: 400,
		Errors:     errs,
	})
}
