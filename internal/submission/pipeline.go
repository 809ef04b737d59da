// Package submission runs the strictly sequential submit flow: validate,
// upload the optional logo, assemble the order, send it and clear the draft.
package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/angelmondragon/customorder-backend/internal/orders"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/angelmondragon/customorder-backend/pkg/storage"
	"github.com/shopspring/decimal"
)

var errStorageNotReady = errors.New("file storage not initialized")

// Uploader stores logo attachments.
type Uploader interface {
	State() enums.CollaboratorState
	Provider() enums.StorageProvider
	Upload(ctx context.Context, file Attachment, customer, event string) (*storage.StoredFile, error)
}

// Dispatcher sends the flat order payload.
type Dispatcher interface {
	State() enums.CollaboratorState
	Send(ctx context.Context, payload map[string]string) error
}

// Validator is the submission gate over the whole draft.
type Validator interface {
	ValidateAll(d *draft.Draft, file *validation.FileMeta) error
}

type DraftClearer interface {
	Clear(ctx context.Context, key string)
}

// Recorder receives submission metrics.
type Recorder interface {
	ObserveSubmission(outcome enums.SubmissionOutcome, elapsed time.Duration)
	ObserveUpload(provider enums.StorageProvider, success bool)
}

// AuditRecorder stores one row per attempt. Failures are logged only.
type AuditRecorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt) error
}

// Attempt is the audit view of a submission. It never carries contact data.
type Attempt struct {
	SessionID       string
	Outcome         enums.SubmissionOutcome
	ErrorCode       string
	ProductCount    int
	Quantity        int64
	Quote           bool
	EstimatedTotal  decimal.Decimal
	UploadAttempted bool
	UploadSucceeded bool
	StorageProvider enums.StorageProvider
	Duration        time.Duration
	SubmittedAt     time.Time
}

// Request is one submit call for a session.
type Request struct {
	SessionID  string
	SessionKey string
	Draft      *draft.Draft
	File       *Attachment
}

// Outcome carries the single notice shown to the user plus what happened on
// the way.
type Outcome struct {
	Result enums.SubmissionOutcome `json:"result"`
	Notice Notice                  `json:"notice"`
	Upload *orders.UploadResult    `json:"upload,omitempty"`
	Order  *orders.Order           `json:"-"`
}

type Pipeline struct {
	validator  Validator
	assembler  *orders.Assembler
	dispatcher Dispatcher
	drafts     DraftClearer
	uploader   Uploader
	metrics    Recorder
	audit      AuditRecorder
	logg       *logger.Logger
	now        func() time.Time
	timings    NoticeTimings
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithUploader enables logo uploads.
func WithUploader(u Uploader) Option {
	return func(p *Pipeline) {
		p.uploader = u
	}
}

func WithMetrics(r Recorder) Option {
	return func(p *Pipeline) {
		p.metrics = r
	}
}

func WithAudit(a AuditRecorder) Option {
	return func(p *Pipeline) {
		p.audit = a
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.logg = l
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func WithNoticeTimings(t NoticeTimings) Option {
	return func(p *Pipeline) {
		p.timings = t
	}
}

func NewPipeline(validator Validator, assembler *orders.Assembler, dispatcher Dispatcher, drafts DraftClearer, opts ...Option) (*Pipeline, error) {
	if validator == nil {
		return nil, fmt.Errorf("validator required")
	}
	if assembler == nil {
		return nil, fmt.Errorf("assembler required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher required")
	}
	if drafts == nil {
		return nil, fmt.Errorf("draft store required")
	}
	p := &Pipeline{
		validator:  validator,
		assembler:  assembler,
		dispatcher: dispatcher,
		drafts:     drafts,
		now:        time.Now,
		timings:    NoticeTimings{AutoDismiss: 5 * time.Second, ResetDelay: 3 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Submit runs the flow once. On failure the returned error is a typed
// *pkgerrors.Error and the outcome still carries the error notice; the
// draft is left untouched.
func (p *Pipeline) Submit(ctx context.Context, req Request) (*Outcome, error) {
	started := p.now()
	if req.Draft == nil {
		req.Draft = draft.New()
	}
	attempt := Attempt{SessionID: req.SessionID, SubmittedAt: started}

	if err := p.validator.ValidateAll(req.Draft, req.File.Meta()); err != nil {
		return p.fail(ctx, started, attempt, enums.SubmissionInvalid, toAppError(err))
	}

	upload := p.upload(ctx, req)
	order := p.assembler.Assemble(req.Draft, upload, started)

	attempt.ProductCount = len(order.Lines)
	attempt.Quantity = order.Quantity
	attempt.Quote = order.Quote
	attempt.EstimatedTotal = order.EstimatedTotal
	if upload != nil {
		attempt.UploadAttempted = upload.Attempted
		attempt.UploadSucceeded = upload.Success
		attempt.StorageProvider = upload.Provider
	}

	if !p.dispatcher.State().IsReady() {
		return p.fail(ctx, started, attempt, enums.SubmissionNotConfigured,
			pkgerrors.New(pkgerrors.CodeConfiguration, MsgNotConfigured))
	}
	if err := p.dispatcher.Send(ctx, order.Payload()); err != nil {
		out, appErr := p.fail(ctx, started, attempt, enums.SubmissionDispatchError,
			pkgerrors.Wrap(pkgerrors.CodeDispatch, err, MsgDispatchFailed))
		out.Upload = upload
		return out, appErr
	}

	p.drafts.Clear(ctx, req.SessionKey)
	p.finish(ctx, started, attempt, enums.SubmissionSent)
	if p.logg != nil {
		p.logg.Info(p.logg.WithFields(ctx, map[string]any{
			"product_count": len(order.Lines),
			"has_logo":      upload != nil && upload.Attempted,
		}), "order submitted")
	}
	return &Outcome{
		Result: enums.SubmissionSent,
		Notice: p.timings.notice(enums.NoticeSuccess, MsgSubmitted),
		Upload: upload,
		Order:  order,
	}, nil
}

// upload never fails the submission; problems end up in the result.
func (p *Pipeline) upload(ctx context.Context, req Request) *orders.UploadResult {
	if req.File == nil {
		return nil
	}
	result := &orders.UploadResult{Attempted: true, FileName: req.File.Name}
	if p.uploader == nil || !p.uploader.State().IsReady() {
		result.Error = errStorageNotReady.Error()
		p.warnUpload(ctx, pkgerrors.Wrap(pkgerrors.CodeUpload, errStorageNotReady, "upload logo"))
		return result
	}
	result.Provider = p.uploader.Provider()

	stored, err := p.uploader.Upload(ctx, *req.File,
		req.Draft.Get(fields.ContactName), req.Draft.Get(fields.EventName))
	if p.metrics != nil {
		p.metrics.ObserveUpload(result.Provider, err == nil)
	}
	if err != nil {
		result.Error = err.Error()
		p.warnUpload(ctx, pkgerrors.Wrap(pkgerrors.CodeUpload, err, "upload logo"))
		return result
	}
	result.Success = true
	result.FileID = stored.ID
	result.ViewLink = stored.ViewLink
	result.DownloadLink = stored.DownloadLink
	return result
}

func (p *Pipeline) warnUpload(ctx context.Context, err *pkgerrors.Error) {
	if p.logg == nil {
		return
	}
	p.logg.Warn(p.logg.WithField(ctx, "error", pkgerrors.Dump(err)), "logo upload failed, continuing without link")
}

func (p *Pipeline) fail(ctx context.Context, started time.Time, attempt Attempt, result enums.SubmissionOutcome, appErr *pkgerrors.Error) (*Outcome, error) {
	attempt.ErrorCode = string(appErr.Code())
	p.finish(ctx, started, attempt, result)
	return &Outcome{
		Result: result,
		Notice: p.timings.notice(enums.NoticeError, appErr.Message()),
	}, appErr
}

func (p *Pipeline) finish(ctx context.Context, started time.Time, attempt Attempt, result enums.SubmissionOutcome) {
	elapsed := p.now().Sub(started)
	attempt.Outcome = result
	attempt.Duration = elapsed
	if p.metrics != nil {
		p.metrics.ObserveSubmission(result, elapsed)
	}
	if p.audit != nil {
		if err := p.audit.RecordAttempt(ctx, attempt); err != nil && p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", pkgerrors.Dump(err)), "record submission attempt")
		}
	}
}

type appErrorer interface {
	AppError() *pkgerrors.Error
}

func toAppError(err error) *pkgerrors.Error {
	var conv appErrorer
	if errors.As(err, &conv) {
		return conv.AppError()
	}
	if appErr := pkgerrors.As(err); appErr != nil {
		return appErr
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
}
