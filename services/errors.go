package services

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies query failures that map to a client-facing status.
type ErrorKind int

const (
	KindMalformedQuery ErrorKind = iota + 1
	KindUnsupportedQuery
	KindAreaNotFound
	KindNoDataFound
)

// QueryError is a failure caused by the query itself rather than the server.
type QueryError struct {
	Kind    ErrorKind
	Message string
	Areas   []string // unknown areas for KindAreaNotFound, the queried area for KindNoDataFound
}

func (e *QueryError) Error() string { return e.Message }

// Status returns the HTTP status for the error kind.
func (e *QueryError) Status() int {
	switch e.Kind {
	case KindMalformedQuery, KindUnsupportedQuery:
		return http.StatusBadRequest
	case KindAreaNotFound, KindNoDataFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errMissingAnd() error {
	return &QueryError{Kind: KindMalformedQuery, Message: "Use format: Compare Area1 and Area2"}
}

func errNeedTwoAreas() error {
	return &QueryError{Kind: KindMalformedQuery, Message: "Please provide exactly two areas for comparison."}
}

func errUnsupported() error {
	return &QueryError{Kind: KindUnsupportedQuery, Message: "Query must start with 'Analyze' or 'Compare'."}
}

func errAreasNotFound(missing []string) error {
	return &QueryError{
		Kind:    KindAreaNotFound,
		Message: fmt.Sprintf("Area(s) not found: %s", strings.Join(missing, ", ")),
		Areas:   missing,
	}
}

func errNoData(area string) error {
	return &QueryError{
		Kind:    KindNoDataFound,
		Message: fmt.Sprintf("No data found for %s", area),
		Areas:   []string{area},
	}
}
