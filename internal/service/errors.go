package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/document"
	"github.com/mmynk/clubportal/internal/mail"
	"github.com/mmynk/clubportal/internal/storage"
)

// MissingTokensHeader lists, comma separated, the tokens a rejected template
// lacks.
const MissingTokensHeader = "Missing-Tokens"

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks a request's struct tags before any store call.
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fe.Field()
			}
			return connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("requête invalide (%s): %w", strings.Join(fields, ", "), err))
		}
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

// invalid builds an InvalidArgument error with a French message.
func invalid(msg string, err error) error {
	if err == nil {
		return connect.NewError(connect.CodeInvalidArgument, errors.New(msg))
	}
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: %w", msg, err))
}

// toConnectError maps domain errors to Connect codes. msg is the French
// message shown to the admin.
func toConnectError(msg string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	var tmplErr *document.TemplateError
	switch {
	case errors.As(err, &tmplErr):
		cerr := connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("le modèle ne contient pas les balises obligatoires : %s: %w",
				strings.Join(tmplErr.MissingNames(), ", "), err))
		cerr.Meta().Set(MissingTokensHeader, strings.Join(tmplErr.MissingNames(), ","))
		return cerr
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, fmt.Errorf("%s: %w", msg, err))
	case errors.Is(err, document.ErrUnknownKind),
		errors.Is(err, billing.ErrInvalidSlot),
		errors.Is(err, mail.ErrNoRecipients):
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%s: %w", msg, err))
	default:
		slog.Error("Unexpected error", "message", msg, "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("%s: %w", msg, err))
	}
}
