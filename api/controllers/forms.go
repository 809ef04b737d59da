package controllers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/customorder-backend/api/responses"
	"github.com/angelmondragon/customorder-backend/api/validators"
	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/angelmondragon/customorder-backend/internal/forms"
	"github.com/angelmondragon/customorder-backend/internal/orders"
	"github.com/angelmondragon/customorder-backend/internal/submission"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
)

// multipartSlack covers the non-file parts and multipart framing.
const multipartSlack = 64 << 10

// FormService is the session-level surface the form handlers drive.
type FormService interface {
	Create(ctx context.Context) (*forms.State, error)
	State(ctx context.Context, id string) (*forms.State, error)
	SetFields(ctx context.Context, id string, in forms.FieldsInput) (*forms.FieldsResult, error)
	ValidateField(ctx context.Context, id, name string, live bool) (validation.Verdict, error)
	ToggleProduct(ctx context.Context, id, productID string) (*forms.ToggleResult, error)
	Next(ctx context.Context, id string) (*forms.StepResult, error)
	Prev(ctx context.Context, id string) (*forms.StepResult, error)
	Summary(ctx context.Context, id string) (orders.Summary, error)
	SummaryHTML(ctx context.Context, id string) (string, error)
	InspectLogo(ctx context.Context, id string, meta validation.FileMeta) (validation.Verdict, error)
	Submit(ctx context.Context, id string, file *submission.Attachment) (*submission.Outcome, error)
	Reset(ctx context.Context, id string) (*forms.State, error)
}

type setFieldsRequest struct {
	Values   map[string]string `json:"values" validate:"max=32"`
	Products []string          `json:"products" validate:"omitempty,max=64"`
}

type inspectLogoRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,mediatype"`
	Size        int64  `json:"size" validate:"min=0"`
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionId")
}

// fieldParam maps the short "products" alias onto the selection field.
func fieldParam(r *http.Request) string {
	name := strings.TrimSpace(chi.URLParam(r, "field"))
	if name == "products" {
		return fields.Products
	}
	return name
}

func FormCreate(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := svc.Create(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

func FormState(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := svc.State(r.Context(), sessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func FormReset(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := svc.Reset(r.Context(), sessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func FormSetFields(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setFieldsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.SetFields(r.Context(), sessionID(r), forms.FieldsInput{
			Values:   payload.Values,
			Products: payload.Products,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

// FormValidateField runs the blur check, or the live quantity check with
// ?mode=live.
func FormValidateField(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := validators.ParseQueryChoice(r, "mode", "blur", "blur", "live")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		name := fieldParam(r)
		verdict, err := svc.ValidateField(r.Context(), sessionID(r), name, mode == "live")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"field": name, "verdict": verdict})
	}
}

func FormToggleProduct(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.ToggleProduct(r.Context(), sessionID(r), chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func FormNext(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Next(r.Context(), sessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func FormPrev(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Prev(r.Context(), sessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

// FormSummary returns the review summary as JSON, or as a sanitized HTML
// fragment with ?format=html.
func FormSummary(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := validators.ParseQueryChoice(r, "format", "json", "json", "html")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if format == "html" {
			html, err := svc.SummaryHTML(r.Context(), sessionID(r))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteHTML(w, http.StatusOK, html)
			return
		}
		summary, err := svc.Summary(r.Context(), sessionID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func FormInspectLogo(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload inspectLogoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		verdict, err := svc.InspectLogo(r.Context(), sessionID(r), validation.FileMeta{
			Name:        payload.Name,
			ContentType: payload.ContentType,
			Size:        payload.Size,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verdict)
	}
}

// FormSubmit accepts an empty/JSON body or a multipart body with an optional
// logoUpload part.
func FormSubmit(svc FormService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := readLogo(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcome, err := svc.Submit(r.Context(), sessionID(r), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}

func readLogo(w http.ResponseWriter, r *http.Request) (*submission.Attachment, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, validation.MaxUploadBytes+multipartSlack)
	if err := r.ParseMultipartForm(validation.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, validation.MsgFile).
				WithDetails(map[string]string{fields.LogoUpload: validation.MsgFile})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}

	part, header, err := r.FormFile(fields.LogoUpload)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid logo upload")
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read logo upload")
	}
	return &submission.Attachment{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}
