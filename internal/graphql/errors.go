package graphql

import (
	"strings"

	"github.com/distria/distria/internal/domain"
)

// responseError is one entry of a GraphQL errors array.
type responseError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code           string `json:"code"`
		Classification string `json:"classification"`
	} `json:"extensions"`
}

// toDomain maps a backend GraphQL error onto the domain error taxonomy.
//
// The backend labels errors either through extensions.code or, for Spring
// GraphQL style responses, extensions.classification. An UNAUTHENTICATED
// label anywhere means the session is no longer valid; pages react to that
// code by forcing a logout.
func (e responseError) toDomain(op string) *domain.Error {
	label := e.Extensions.Code
	if label == "" {
		label = e.Extensions.Classification
	}

	switch strings.ToUpper(label) {
	case "UNAUTHENTICATED", "UNAUTHORIZED":
		return domain.Unauthorized(op, e.Message)
	case "FORBIDDEN":
		return domain.Forbidden(op, e.Message)
	case "NOT_FOUND":
		return domain.Errorf(domain.ENOTFOUND, op, "%s", e.Message)
	case "BAD_REQUEST", "VALIDATION_ERROR":
		return domain.Invalid(op, e.Message)
	case "CONFLICT":
		return domain.Errorf(domain.ECONFLICT, op, "%s", e.Message)
	default:
		return domain.Errorf(domain.EINTERNAL, op, "%s", e.Message)
	}
}
