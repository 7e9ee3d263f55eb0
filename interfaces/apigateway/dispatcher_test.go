package apigateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"users-backend/domain/users"
	apperrors "users-backend/pkg/errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockUserAPI struct {
	mock.Mock
}

func (m *mockUserAPI) GetByID(ctx context.Context, id string) (*users.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*users.User)
	return user, args.Error(1)
}

func (m *mockUserAPI) ListAll(ctx context.Context, limit int32) (*users.Page, error) {
	args := m.Called(ctx, limit)
	page, _ := args.Get(0).(*users.Page)
	return page, args.Error(1)
}

func (m *mockUserAPI) Create(ctx context.Context, req *users.CreateUserRequest, createdBy string) (*users.User, error) {
	args := m.Called(ctx, req, createdBy)
	user, _ := args.Get(0).(*users.User)
	return user, args.Error(1)
}

func (m *mockUserAPI) Update(ctx context.Context, id string, req *users.UpdateUserRequest, updatedBy string) (*users.User, error) {
	args := m.Called(ctx, id, req, updatedBy)
	user, _ := args.Get(0).(*users.User)
	return user, args.Error(1)
}

func (m *mockUserAPI) Delete(ctx context.Context, id string) (*users.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*users.User)
	return user, args.Error(1)
}

func (m *mockUserAPI) HealthCheck(ctx context.Context) (*users.HealthStatus, error) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(*users.HealthStatus)
	return status, args.Error(1)
}

const testID = "0b26ae1c-9f6b-4bb5-a5b3-aa3b2f28a111"

func testUser() *users.User {
	return &users.User{
		ID:        testID,
		Name:      "Ana Lopez",
		Email:     "ana@example.com",
		CreatedAt: "2026-01-01T00:00:00Z",
		UpdatedAt: "2026-01-01T00:00:00Z",
	}
}

func newEvent(method, path string, pathParams map[string]string, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		PathParameters: pathParams,
		Body:           body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: method,
				Path:   path,
			},
		},
	}
}

func withClaims(event events.APIGatewayV2HTTPRequest, claims map[string]string) events.APIGatewayV2HTTPRequest {
	event.RequestContext.Authorizer = &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
		JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{Claims: claims},
	}
	return event
}

func dispatch(t *testing.T, service *mockUserAPI, event events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	t.Helper()
	d := NewDispatcher(service, zap.NewNop())
	resp, err := d.Handle(context.Background(), event)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp events.APIGatewayV2HTTPResponse) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body
}

func TestHandle_OptionsPreflight(t *testing.T) {
	resp := dispatch(t, new(mockUserAPI), newEvent("OPTIONS", "/users", nil, ""))

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "OK", decodeBody(t, resp)["message"])
}

func TestHandle_HealthOK(t *testing.T) {
	service := new(mockUserAPI)
	service.On("HealthCheck", mock.Anything).Return(&users.HealthStatus{
		Healthy:   true,
		TableName: "users-table",
		Timestamp: "2026-01-01T00:00:00Z",
	}, nil)

	resp := dispatch(t, service, newEvent("GET", "/health", nil, ""))

	assert.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["healthy"])
	assert.Equal(t, "users-table", body["tableName"])
}

func TestHandle_HealthFailureIs503(t *testing.T) {
	service := new(mockUserAPI)
	service.On("HealthCheck", mock.Anything).
		Return(nil, apperrors.NewUnavailableError("Service unhealthy"))

	resp := dispatch(t, service, newEvent("GET", "/health", nil, ""))

	assert.Equal(t, 503, resp.StatusCode)
	assert.Equal(t, "Service unhealthy", decodeBody(t, resp)["message"])
}

func TestHandle_GetByID(t *testing.T) {
	service := new(mockUserAPI)
	service.On("GetByID", mock.Anything, testID).Return(testUser(), nil)

	resp := dispatch(t, service, newEvent("GET", "/users/"+testID, map[string]string{"id": testID}, ""))

	assert.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "User retrieved successfully", body["message"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, testID, user["id"])
}

func TestHandle_GetByID_NotFound(t *testing.T) {
	service := new(mockUserAPI)
	service.On("GetByID", mock.Anything, testID).Return(nil, nil)

	resp := dispatch(t, service, newEvent("GET", "/users/"+testID, map[string]string{"id": testID}, ""))

	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "User not found", decodeBody(t, resp)["message"])
}

func TestHandle_List(t *testing.T) {
	service := new(mockUserAPI)
	service.On("ListAll", mock.Anything, int32(0)).Return(&users.Page{
		Items:   []users.User{*testUser()},
		Count:   1,
		HasMore: false,
	}, nil)

	resp := dispatch(t, service, newEvent("GET", "/users", nil, ""))

	assert.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Users retrieved successfully", body["message"])
	assert.Equal(t, float64(1), body["count"])
	assert.Len(t, body["users"], 1)
	assert.Equal(t, false, body["hasMore"])
}

func TestHandle_Post_Created(t *testing.T) {
	service := new(mockUserAPI)
	service.On("Create", mock.Anything, mock.AnythingOfType("*users.CreateUserRequest"), "caller-1").
		Return(testUser(), nil)

	event := withClaims(
		newEvent("POST", "/users", nil, `{"name":"Ana Lopez","email":"ANA@Example.com"}`),
		map[string]string{"sub": "caller-1", "email": "caller@example.com"},
	)
	resp := dispatch(t, service, event)

	assert.Equal(t, 201, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "User created successfully", body["message"])
	service.AssertExpectations(t)
}

func TestHandle_Post_AnonymousCallerAllowed(t *testing.T) {
	service := new(mockUserAPI)
	service.On("Create", mock.Anything, mock.Anything, "").Return(testUser(), nil)

	resp := dispatch(t, service, newEvent("POST", "/users", nil, `{"name":"Ana Lopez","email":"ana@example.com"}`))

	assert.Equal(t, 201, resp.StatusCode)
}

func TestHandle_Post_MissingBody(t *testing.T) {
	resp := dispatch(t, new(mockUserAPI), newEvent("POST", "/users", nil, ""))

	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Request body is required", decodeBody(t, resp)["message"])
}

func TestHandle_Post_InvalidJSON(t *testing.T) {
	resp := dispatch(t, new(mockUserAPI), newEvent("POST", "/users", nil, "{not json"))

	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Invalid JSON in request body", decodeBody(t, resp)["message"])
}

func TestHandle_Post_ValidationErrorsListed(t *testing.T) {
	resp := dispatch(t, new(mockUserAPI), newEvent("POST", "/users", nil, `{"name":"A","email":"a@b"}`))

	assert.Equal(t, 400, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, []interface{}{
		"Name must be at least 2 characters long",
		"Please provide a valid email address",
	}, body["errors"])
}

func TestHandle_Post_Conflict(t *testing.T) {
	service := new(mockUserAPI)
	service.On("Create", mock.Anything, mock.Anything, "").
		Return(nil, apperrors.NewConflictError("Email already in use"))

	resp := dispatch(t, service, newEvent("POST", "/users", nil, `{"name":"Ana Lopez","email":"ana@example.com"}`))

	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, "Email already in use", decodeBody(t, resp)["message"])
}

func TestHandle_Put_MissingID(t *testing.T) {
	resp := dispatch(t, new(mockUserAPI), newEvent("PUT", "/users", nil, `{"name":"Ana"}`))

	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "User ID is required in path", decodeBody(t, resp)["message"])
}

func TestHandle_Put_NoFieldsToUpdate(t *testing.T) {
	resp := dispatch(t, new(mockUserAPI), newEvent("PUT", "/users/"+testID, map[string]string{"id": testID}, `{}`))

	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "No fields to update", decodeBody(t, resp)["message"])
}

func TestHandle_Put_Success(t *testing.T) {
	service := new(mockUserAPI)
	service.On("Update", mock.Anything, testID, mock.AnythingOfType("*users.UpdateUserRequest"), "").
		Return(testUser(), nil)

	resp := dispatch(t, service, newEvent("PUT", "/users/"+testID, map[string]string{"id": testID}, `{"name":"New Name"}`))

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "User updated successfully", decodeBody(t, resp)["message"])
}

func TestHandle_Put_NotFound(t *testing.T) {
	service := new(mockUserAPI)
	service.On("Update", mock.Anything, testID, mock.Anything, "").
		Return(nil, apperrors.NewNotFoundError("User not found"))

	resp := dispatch(t, service, newEvent("PUT", "/users/"+testID, map[string]string{"id": testID}, `{"name":"New Name"}`))

	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandle_Delete_Success(t *testing.T) {
	service := new(mockUserAPI)
	service.On("Delete", mock.Anything, testID).Return(testUser(), nil)

	resp := dispatch(t, service, newEvent("DELETE", "/users/"+testID, map[string]string{"id": testID}, ""))

	assert.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "User deleted successfully", body["message"])
	deleted := body["deletedUser"].(map[string]interface{})
	assert.Equal(t, testID, deleted["id"])
}

func TestHandle_Delete_MissingID(t *testing.T) {
	resp := dispatch(t, new(mockUserAPI), newEvent("DELETE", "/users", nil, ""))

	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandle_MethodNotAllowed(t *testing.T) {
	resp := dispatch(t, new(mockUserAPI), newEvent("PATCH", "/users", nil, ""))

	assert.Equal(t, 405, resp.StatusCode)
	assert.Equal(t, "Method PATCH not allowed", decodeBody(t, resp)["message"])
}

func TestHandle_UnexpectedErrorIs500(t *testing.T) {
	service := new(mockUserAPI)
	service.On("ListAll", mock.Anything, int32(0)).Return(nil, errors.New("socket timeout"))

	resp := dispatch(t, service, newEvent("GET", "/users", nil, ""))

	assert.Equal(t, 500, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Error retrieving users", body["message"])
	assert.Equal(t, "socket timeout", body["error"])
}

func TestHandle_CORSHeadersOnEveryResponse(t *testing.T) {
	service := new(mockUserAPI)
	service.On("ListAll", mock.Anything, int32(0)).Return(&users.Page{}, nil)

	for _, event := range []events.APIGatewayV2HTTPRequest{
		newEvent("GET", "/users", nil, ""),
		newEvent("PATCH", "/users", nil, ""),
		newEvent("POST", "/users", nil, ""),
	} {
		resp := dispatch(t, service, event)
		assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
		assert.Equal(t, "GET,POST,PUT,DELETE,OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
		assert.Equal(t, "Content-Type,Authorization", resp.Headers["Access-Control-Allow-Headers"])
	}
}
