// Package apigateway dispatches API Gateway request envelopes to the user
// record service and formats the results back into response envelopes.
package apigateway

import (
	"context"
	"encoding/json"
	"net/http"

	"users-backend/domain/users"
	"users-backend/pkg/auth"
	apperrors "users-backend/pkg/errors"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// UserAPI is the service surface the dispatcher routes to.
type UserAPI interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
	ListAll(ctx context.Context, limit int32) (*users.Page, error)
	Create(ctx context.Context, req *users.CreateUserRequest, createdBy string) (*users.User, error)
	Update(ctx context.Context, id string, req *users.UpdateUserRequest, updatedBy string) (*users.User, error)
	Delete(ctx context.Context, id string) (*users.User, error)
	HealthCheck(ctx context.Context) (*users.HealthStatus, error)
}

// Dispatcher routes inbound envelopes by method and path. Stateless per
// invocation; it trusts the upstream authorizer for token verification and
// only reads the attached claims.
type Dispatcher struct {
	service UserAPI
	logger  *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(service UserAPI, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		service: service,
		logger:  logger,
	}
}

// Handle processes one request envelope. The returned error is always nil;
// every failure is mapped to a response envelope.
func (d *Dispatcher) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := event.RequestContext.HTTP.Method
	path := event.RequestContext.HTTP.Path

	d.logger.Info("Event received",
		zap.String("httpMethod", method),
		zap.String("path", path),
		zap.Any("pathParameters", event.PathParameters),
	)

	// CORS preflight
	if method == http.MethodOptions {
		return newResponse(200, messageResponse{Message: "OK"}), nil
	}

	if path == "/health" {
		status, err := d.service.HealthCheck(ctx)
		if err != nil {
			d.logger.Error("Health check failed", zap.Error(err))
			return errorResponse("Service unhealthy", 503), nil
		}
		return newResponse(200, status), nil
	}

	// Anonymous callers proceed with an empty identity.
	var callerID string
	if user := auth.ExtractUserFromEvent(event, d.logger); user != nil {
		callerID = user.Sub
	}

	id := event.PathParameters["id"]
	body := event.Body

	switch method {
	case http.MethodGet:
		return d.handleGet(ctx, id), nil
	case http.MethodPost:
		return d.handlePost(ctx, body, callerID), nil
	case http.MethodPut:
		return d.handlePut(ctx, id, body, callerID), nil
	case http.MethodDelete:
		return d.handleDelete(ctx, id), nil
	default:
		return errorResponse("Method "+method+" not allowed", 405), nil
	}
}

func (d *Dispatcher) handleGet(ctx context.Context, id string) events.APIGatewayV2HTTPResponse {
	if id != "" {
		user, err := d.service.GetByID(ctx, id)
		if err != nil {
			return d.serviceError("GET", err, "Error retrieving users")
		}
		if user == nil {
			return errorResponse("User not found", 404)
		}
		return newResponse(200, userResponse{
			Message: "User retrieved successfully",
			User:    user,
		})
	}

	page, err := d.service.ListAll(ctx, 0)
	if err != nil {
		return d.serviceError("GET", err, "Error retrieving users")
	}
	return newResponse(200, usersResponse{
		Message: "Users retrieved successfully",
		Users:   page.Items,
		Count:   page.Count,
		HasMore: page.HasMore,
	})
}

func (d *Dispatcher) handlePost(ctx context.Context, body, callerID string) events.APIGatewayV2HTTPResponse {
	if body == "" {
		return errorResponse("Request body is required", 400)
	}

	var req users.CreateUserRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorResponse("Invalid JSON in request body", 400)
	}

	if errs := users.ValidateCreateUser(&req); len(errs) > 0 {
		return validationErrorResponse(errs)
	}

	user, err := d.service.Create(ctx, &req, callerID)
	if err != nil {
		return d.serviceError("POST", err, "Error creating user")
	}

	return newResponse(201, userResponse{
		Message: "User created successfully",
		User:    user,
	})
}

func (d *Dispatcher) handlePut(ctx context.Context, id, body, callerID string) events.APIGatewayV2HTTPResponse {
	if id == "" {
		return errorResponse("User ID is required in path", 400)
	}
	if body == "" {
		return errorResponse("Request body is required", 400)
	}

	var req users.UpdateUserRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorResponse("Invalid JSON in request body", 400)
	}

	if errs := users.ValidateUpdateUser(&req); len(errs) > 0 {
		return validationErrorResponse(errs)
	}

	if !req.HasFields() {
		return errorResponse("No fields to update", 400)
	}

	user, err := d.service.Update(ctx, id, &req, callerID)
	if err != nil {
		return d.serviceError("PUT", err, "Error updating user")
	}

	return newResponse(200, userResponse{
		Message: "User updated successfully",
		User:    user,
	})
}

func (d *Dispatcher) handleDelete(ctx context.Context, id string) events.APIGatewayV2HTTPResponse {
	if id == "" {
		return errorResponse("User ID is required in path", 400)
	}

	user, err := d.service.Delete(ctx, id)
	if err != nil {
		return d.serviceError("DELETE", err, "Error deleting user")
	}

	return newResponse(200, deleteResponse{
		Message:     "User deleted successfully",
		DeletedUser: user,
	})
}

// serviceError maps a service failure to a response envelope: typed domain
// errors carry their own status, anything unrecognized becomes a 500.
func (d *Dispatcher) serviceError(operation string, err error, fallback string) events.APIGatewayV2HTTPResponse {
	d.logger.Error("Error in "+operation+" request", zap.Error(err))

	if appErr := apperrors.GetAppError(err); appErr != nil {
		return errorResponse(appErr.Message, appErr.HTTPStatus)
	}
	return errorResponseWithDetail(fallback, 500, err.Error())
}
