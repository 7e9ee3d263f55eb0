package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildForTest(t *testing.T, updates map[string]interface{}, exclude []string) expression.Expression {
	t.Helper()
	upd := buildUpdateExpression(updates, exclude, "2026-01-02T03:04:05Z")
	expr, err := expression.NewBuilder().WithUpdate(upd).Build()
	require.NoError(t, err)
	return expr
}

func attributeNames(expr expression.Expression) []string {
	names := make([]string, 0, len(expr.Names()))
	for _, name := range expr.Names() {
		names = append(names, name)
	}
	return names
}

func stringValues(expr expression.Expression) []string {
	var out []string
	for _, av := range expr.Values() {
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			out = append(out, s.Value)
		}
	}
	return out
}

func TestBuildUpdateExpression_SetsSuppliedFields(t *testing.T) {
	expr := buildForTest(t, map[string]interface{}{
		"name":    "Ana Lopez",
		"version": 3,
	}, nil)

	names := attributeNames(expr)
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "version")
	assert.Contains(t, names, "updatedAt")
}

func TestBuildUpdateExpression_ExcludesProtectedFields(t *testing.T) {
	expr := buildForTest(t, map[string]interface{}{
		"id":        "should-not-change",
		"createdAt": "should-not-change",
		"name":      "Ana",
	}, []string{"id", "createdAt"})

	names := attributeNames(expr)
	assert.NotContains(t, names, "id")
	assert.NotContains(t, names, "createdAt")
	assert.Contains(t, names, "name")
}

func TestBuildUpdateExpression_SanitizesEmail(t *testing.T) {
	expr := buildForTest(t, map[string]interface{}{
		"email": "  ANA@Example.com ",
	}, nil)

	assert.Contains(t, stringValues(expr), "ana@example.com")
}

func TestBuildUpdateExpression_TrimsName(t *testing.T) {
	expr := buildForTest(t, map[string]interface{}{
		"name": "  Ana Lopez  ",
	}, nil)

	assert.Contains(t, stringValues(expr), "Ana Lopez")
}

func TestBuildUpdateExpression_AlwaysSetsUpdatedAt(t *testing.T) {
	expr := buildForTest(t, map[string]interface{}{
		"name": "Ana",
	}, nil)

	assert.Contains(t, attributeNames(expr), "updatedAt")
	assert.Contains(t, stringValues(expr), "2026-01-02T03:04:05Z")
}

func TestBuildUpdateExpression_NonStringValuesPassThrough(t *testing.T) {
	expr := buildForTest(t, map[string]interface{}{
		"age": 30,
	}, nil)

	var numbers []string
	for _, av := range expr.Values() {
		if n, ok := av.(*types.AttributeValueMemberN); ok {
			numbers = append(numbers, n.Value)
		}
	}
	assert.Contains(t, numbers, "30")
}
