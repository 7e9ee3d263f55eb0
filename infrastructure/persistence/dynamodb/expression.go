package dynamodb

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// buildUpdateExpression turns a field-to-value mapping into a partial SET
// expression. Excluded fields are dropped, email values are trimmed and
// lower-cased, name values are trimmed, and updatedAt is always set to the
// supplied timestamp. Callers are expected to reject an empty change set
// before getting here.
func buildUpdateExpression(updates map[string]interface{}, exclude []string, updatedAt string) expression.UpdateBuilder {
	excluded := make(map[string]bool, len(exclude))
	for _, field := range exclude {
		excluded[field] = true
	}

	upd := expression.UpdateBuilder{}
	for field, value := range updates {
		if excluded[field] {
			continue
		}
		switch field {
		case "email":
			if s, ok := value.(string); ok {
				value = strings.ToLower(strings.TrimSpace(s))
			}
		case "name":
			if s, ok := value.(string); ok {
				value = strings.TrimSpace(s)
			}
		}
		upd = upd.Set(expression.Name(field), expression.Value(value))
	}

	return upd.Set(expression.Name("updatedAt"), expression.Value(updatedAt))
}
