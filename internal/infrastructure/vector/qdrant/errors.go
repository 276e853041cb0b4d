package qdrant

import (
	"errors"
	"fmt"
)

type statusError struct {
	operation  string
	statusCode int
	status     string
	body       string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("qdrant %s status: %s", e.operation, e.status)
	}
	return fmt.Sprintf("qdrant %s status: %s: %s", e.operation, e.status, e.body)
}

func isStatus(err error, code int, target **statusError) bool {
	if errors.As(err, target) {
		return (*target).statusCode == code
	}
	return false
}
