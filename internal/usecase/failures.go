package usecase

import (
	"errors"

	"jscenario/internal/domain"
	"jscenario/internal/ports"
)

// failureMapper turns component errors into user-facing failures.
type failureMapper struct {
	tr ports.Translator
}

func (m failureMapper) fromError(err error) *domain.Failure {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return &domain.Failure{
			Kind:    domain.ErrorKindValidation,
			Message: m.tr.T(validationMessageID(err), validation.Data),
			Cause:   err,
		}
	}

	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		return &domain.Failure{
			Kind:       domain.ErrorKindServer,
			StatusCode: statusErr.StatusCode,
			Message:    m.tr.T("error_server", nil),
			Cause:      err,
		}
	}

	var rejected *domain.RejectedError
	if errors.As(err, &rejected) {
		message := rejected.Message
		if message == "" {
			message = m.tr.T("error_unknown", nil)
		}
		return &domain.Failure{Kind: domain.ErrorKindServer, Message: message, Cause: err}
	}

	var decodeErr *domain.DecodeError
	if errors.As(err, &decodeErr) {
		return &domain.Failure{Kind: domain.ErrorKindParse, Message: m.tr.T("error_server", nil), Cause: err}
	}

	return &domain.Failure{
		Kind:    domain.ErrorKindConnectivity,
		Message: m.tr.T("error_connectivity", nil),
		Cause:   err,
	}
}

// passthroughTranslator is used when no catalog is wired.
type passthroughTranslator struct{}

func (passthroughTranslator) T(id string, _ map[string]any) string { return id }
