// Package forms binds form sessions to drafts. Every operation loads the
// session's draft, applies one controller action and saves it back while
// holding the session's lock.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/angelmondragon/customorder-backend/internal/orders"
	"github.com/angelmondragon/customorder-backend/internal/submission"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/internal/wizard"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/angelmondragon/customorder-backend/pkg/logger"
	"github.com/google/uuid"
)

const MsgSubmitFromReview = "Please review your order before submitting."

// DraftStore is the best-effort persistence used by the service.
type DraftStore interface {
	Load(ctx context.Context, key string) *draft.Draft
	Save(ctx context.Context, key string, d *draft.Draft)
	Clear(ctx context.Context, key string)
}

type Submitter interface {
	Submit(ctx context.Context, req submission.Request) (*submission.Outcome, error)
}

type Service struct {
	controller *wizard.Controller
	assembler  *orders.Assembler
	pipeline   Submitter
	drafts     DraftStore
	locks      *sessionLocks
	logg       *logger.Logger
	newID      func() string
}

func NewService(controller *wizard.Controller, assembler *orders.Assembler, pipeline Submitter, drafts DraftStore, logg *logger.Logger) (*Service, error) {
	if controller == nil {
		return nil, fmt.Errorf("controller required")
	}
	if assembler == nil {
		return nil, fmt.Errorf("assembler required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("submission pipeline required")
	}
	if drafts == nil {
		return nil, fmt.Errorf("draft store required")
	}
	return &Service{
		controller: controller,
		assembler:  assembler,
		pipeline:   pipeline,
		drafts:     drafts,
		locks:      newSessionLocks(),
		logg:       logg,
		newID:      func() string { return uuid.NewString() },
	}, nil
}

// session is one loaded draft under its lock.
type session struct {
	id  string
	key string
	d   *draft.Draft
}

// withSession runs fn with the session locked and its draft loaded and
// reconciled. The draft is saved afterwards unless fn returns save=false.
func (s *Service) withSession(ctx context.Context, id string, fn func(ctx context.Context, sess *session) (save bool, err error)) error {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "form session not found")
	}
	id = parsed.String()

	unlock := s.locks.lock(id)
	defer unlock()

	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, id)
	}
	sess := &session{id: id, key: draft.Key(id)}
	sess.d = s.drafts.Load(ctx, sess.key)
	s.controller.Reconcile(sess.d)

	save, err := fn(ctx, sess)
	if save {
		s.drafts.Save(ctx, sess.key, sess.d)
	}
	return err
}

func (s *Service) state(id string, d *draft.Draft) *State {
	step := wizard.Step(d.CurrentStep)
	return &State{
		SessionID:    id,
		Step:         d.CurrentStep,
		StepTitle:    step.Title(),
		Values:       d.Clone(),
		Progress:     s.controller.Progress(d),
		Selection:    s.controller.SelectionSummary(d),
		Requirements: s.controller.Requirements(d),
	}
}

// Create starts a new session with an empty draft on the first step.
func (s *Service) Create(ctx context.Context) (*State, error) {
	var out *State
	err := s.withSession(ctx, s.newID(), func(ctx context.Context, sess *session) (bool, error) {
		out = s.state(sess.id, sess.d)
		if s.logg != nil {
			s.logg.Info(ctx, "form session created")
		}
		return true, nil
	})
	return out, err
}

// State returns the session's current state. Unknown sessions start empty.
func (s *Service) State(ctx context.Context, id string) (*State, error) {
	var out *State
	err := s.withSession(ctx, id, func(_ context.Context, sess *session) (bool, error) {
		out = s.state(sess.id, sess.d)
		return false, nil
	})
	return out, err
}

// SetFields applies a batch of edits. Unknown field names reject the whole
// batch before anything is written.
func (s *Service) SetFields(ctx context.Context, id string, in FieldsInput) (*FieldsResult, error) {
	names := make([]string, 0, len(in.Values))
	for name := range in.Values {
		if !wizard.KnownField(name) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown field").WithDetails(map[string]string{"field": name})
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var out *FieldsResult
	err := s.withSession(ctx, id, func(_ context.Context, sess *session) (bool, error) {
		if in.Products != nil {
			if err := s.controller.SetSelection(sess.d, in.Products); err != nil {
				return false, err
			}
		}
		out = &FieldsResult{Values: map[string]string{}, Verdicts: map[string]validation.Verdict{}}
		for _, name := range names {
			stored, err := s.controller.SetField(sess.d, name, in.Values[name])
			if err != nil {
				return false, err
			}
			out.Values[name] = stored
		}
		for _, name := range names {
			out.Verdicts[name] = s.controller.ValidateField(sess.d, name)
		}
		out.State = s.state(sess.id, sess.d)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateField is the blur check. live switches the quantity field to the
// per-keystroke rule.
func (s *Service) ValidateField(ctx context.Context, id, name string, live bool) (validation.Verdict, error) {
	if name != fields.Products && !wizard.KnownField(name) {
		return validation.Verdict{}, pkgerrors.New(pkgerrors.CodeNotFound, "unknown field").WithDetails(map[string]string{"field": name})
	}
	var verdict validation.Verdict
	err := s.withSession(ctx, id, func(_ context.Context, sess *session) (bool, error) {
		switch {
		case live && name == fields.TotalQuantity:
			verdict = validation.CheckQuantityLive(sess.d.Get(name))
		case name == fields.Products:
			verdict = validation.Verdict{Valid: len(sess.d.Selection()) > 0}
			if !verdict.Valid {
				verdict.Message = wizard.MsgSelectProduct
			}
		default:
			verdict = s.controller.ValidateField(sess.d, name)
		}
		return false, nil
	})
	return verdict, err
}

func (s *Service) ToggleProduct(ctx context.Context, id, productID string) (*ToggleResult, error) {
	var out *ToggleResult
	err := s.withSession(ctx, id, func(_ context.Context, sess *session) (bool, error) {
		selected, err := s.controller.ToggleProduct(sess.d, productID)
		if err != nil {
			return false, err
		}
		out = &ToggleResult{ProductID: productID, Selected: selected, State: s.state(sess.id, sess.d)}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Next advances when the current step validates. A refused transition
// returns the step error as a validation error.
func (s *Service) Next(ctx context.Context, id string) (*StepResult, error) {
	var out *StepResult
	err := s.withSession(ctx, id, func(ctx context.Context, sess *session) (bool, error) {
		tr, err := s.controller.Next(sess.d)
		if err != nil {
			var stepErr *wizard.StepError
			if errors.As(err, &stepErr) {
				return false, stepErr.AppError()
			}
			return false, err
		}
		if s.logg != nil {
			s.logg.Debug(s.logg.WithStep(ctx, int(tr.To)), "form step advanced")
		}
		out = &StepResult{Transition: tr, State: s.state(sess.id, sess.d)}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Prev(ctx context.Context, id string) (*StepResult, error) {
	var out *StepResult
	err := s.withSession(ctx, id, func(_ context.Context, sess *session) (bool, error) {
		tr := s.controller.Prev(sess.d)
		out = &StepResult{Transition: tr, State: s.state(sess.id, sess.d)}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Summary is the review panel for the session's draft.
func (s *Service) Summary(ctx context.Context, id string) (orders.Summary, error) {
	var out orders.Summary
	err := s.withSession(ctx, id, func(_ context.Context, sess *session) (bool, error) {
		out = s.assembler.Summary(sess.d)
		return false, nil
	})
	return out, err
}

func (s *Service) SummaryHTML(ctx context.Context, id string) (string, error) {
	summary, err := s.Summary(ctx, id)
	if err != nil {
		return "", err
	}
	html, err := orders.RenderSummaryHTML(summary)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render summary")
	}
	return html, nil
}

// InspectLogo is the advisory preview check for a logo before submission.
func (s *Service) InspectLogo(ctx context.Context, id string, meta validation.FileMeta) (validation.Verdict, error) {
	var verdict validation.Verdict
	err := s.withSession(ctx, id, func(_ context.Context, _ *session) (bool, error) {
		verdict = validation.InspectFile(&meta)
		return false, nil
	})
	return verdict, err
}

// Submit hands the draft to the pipeline. Only the review step may submit.
func (s *Service) Submit(ctx context.Context, id string, file *submission.Attachment) (*submission.Outcome, error) {
	var out *submission.Outcome
	err := s.withSession(ctx, id, func(ctx context.Context, sess *session) (bool, error) {
		if sess.d.CurrentStep != wizard.TotalSteps {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, MsgSubmitFromReview).WithDetails(map[string]int{
				"step": sess.d.CurrentStep,
			})
		}
		outcome, err := s.pipeline.Submit(ctx, submission.Request{
			SessionID:  sess.id,
			SessionKey: sess.key,
			Draft:      sess.d,
			File:       file,
		})
		out = outcome
		return false, err
	})
	return out, err
}

// Reset empties the session's draft and returns to the first step.
func (s *Service) Reset(ctx context.Context, id string) (*State, error) {
	var out *State
	err := s.withSession(ctx, id, func(ctx context.Context, sess *session) (bool, error) {
		s.drafts.Clear(ctx, sess.key)
		s.controller.Reset(sess.d)
		out = s.state(sess.id, sess.d)
		return false, nil
	})
	return out, err
}
