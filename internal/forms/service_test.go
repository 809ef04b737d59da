package forms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/customorder-backend/internal/catalog"
	"github.com/angelmondragon/customorder-backend/internal/draft"
	"github.com/angelmondragon/customorder-backend/internal/fields"
	"github.com/angelmondragon/customorder-backend/internal/orders"
	"github.com/angelmondragon/customorder-backend/internal/submission"
	"github.com/angelmondragon/customorder-backend/internal/validation"
	"github.com/angelmondragon/customorder-backend/internal/wizard"
	"github.com/angelmondragon/customorder-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/customorder-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionID = "0b9f5f0e-8c1d-4f8e-9a55-6f4a2b1c3d4e"

var fixedNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type fakeSubmitter struct {
	mu       sync.Mutex
	requests []submission.Request
	outcome  *submission.Outcome
	err      error
}

func (f *fakeSubmitter) Submit(_ context.Context, req submission.Request) (*submission.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.outcome == nil && f.err == nil {
		return &submission.Outcome{Result: enums.SubmissionSent}, nil
	}
	return f.outcome, f.err
}

func newTestService(t *testing.T) (*Service, *draft.MemoryStore, *fakeSubmitter) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	store := draft.NewMemoryStore()
	sub := &fakeSubmitter{}
	controller := wizard.NewController(validation.NewEngine(time.UTC), cat, func() time.Time { return fixedNow })
	svc, err := NewService(controller, orders.NewAssembler(cat, time.UTC), sub, draft.NewBestEffort(store, nil), nil)
	require.NoError(t, err)
	return svc, store, sub
}

func contactValues() map[string]string {
	return map[string]string{
		fields.ContactName: "Jane Doe",
		fields.Email:       "jane@example.com",
		fields.Phone:       "5551234567",
		fields.EventName:   "Spring Gala",
		fields.EventDate:   "2024-03-01",
		fields.Deadline:    "2024-02-15",
	}
}

func TestCreateStartsOnFirstStep(t *testing.T) {
	svc, store, _ := newTestService(t)
	svc.newID = func() string { return sessionID }

	state, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sessionID, state.SessionID)
	assert.Equal(t, 1, state.Step)
	assert.Equal(t, "Contact & Event", state.StepTitle)
	assert.Equal(t, "0 products selected", state.Selection.Text)

	_, err = store.Load(context.Background(), draft.Key(sessionID))
	assert.NoError(t, err, "new session should be persisted")
}

func TestInvalidSessionID(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.State(context.Background(), "not-a-uuid")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUnknownSessionStartsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)
	state, err := svc.State(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Step)
	assert.Empty(t, state.Values.Values)
}

func TestSetFieldsFormatsAndValidates(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.SetFields(ctx, sessionID, FieldsInput{Values: map[string]string{
		fields.Phone: "555-123-4567",
		fields.Email: "jane@",
	}})
	require.NoError(t, err)
	assert.Equal(t, "(555) 123-4567", res.Values[fields.Phone])
	assert.True(t, res.Verdicts[fields.Phone].Valid)
	assert.False(t, res.Verdicts[fields.Email].Valid)
	assert.Equal(t, validation.MsgEmail, res.Verdicts[fields.Email].Message)

	saved, err := store.Load(ctx, draft.Key(sessionID))
	require.NoError(t, err)
	assert.Equal(t, "(555) 123-4567", saved.Get(fields.Phone))
}

func TestSetFieldsRejectsUnknownBeforeWriting(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SetFields(ctx, sessionID, FieldsInput{Values: map[string]string{
		fields.ContactName: "Jane",
		"shoeSize":         "9",
	}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = store.Load(ctx, draft.Key(sessionID))
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestSetFieldsReplacesSelection(t *testing.T) {
	svc, _, _ := newTestService(t)
	res, err := svc.SetFields(context.Background(), sessionID, FieldsInput{Products: []string{"bag-tag", "perform-ace-black"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.State.Selection.Count)
	assert.Equal(t, []string{"perform-ace-black", "bag-tag"}, res.State.Values.Selection())
}

func TestValidateFieldLiveQuantity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.SetFields(ctx, sessionID, FieldsInput{Values: map[string]string{fields.TotalQuantity: "20000"}})
	require.NoError(t, err)

	live, err := svc.ValidateField(ctx, sessionID, fields.TotalQuantity, true)
	require.NoError(t, err)
	assert.Equal(t, validation.MsgQuantityMaximum, live.Message)

	blur, err := svc.ValidateField(ctx, sessionID, fields.TotalQuantity, false)
	require.NoError(t, err)
	assert.True(t, blur.Valid)

	_, err = svc.ValidateField(ctx, sessionID, "shoeSize", false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestNextAndPrevPersistStep(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Next(ctx, sessionID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, wizard.MsgFillRequired, appErr.Message())

	_, err = svc.SetFields(ctx, sessionID, FieldsInput{Values: contactValues()})
	require.NoError(t, err)
	res, err := svc.Next(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StepProducts, res.Transition.To)

	saved, err := store.Load(ctx, draft.Key(sessionID))
	require.NoError(t, err)
	assert.Equal(t, 2, saved.CurrentStep)

	res, err = svc.Prev(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.State.Step)
}

func TestToggleProductUpdatesRequirements(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.ToggleProduct(ctx, sessionID, "ladies-custom-polo")
	require.NoError(t, err)
	assert.True(t, res.Selected)
	assert.True(t, res.State.Requirements.CustomSpecsVisible)
	assert.True(t, res.State.Requirements.Required[fields.CustomPoloSpecs])

	res, err = svc.ToggleProduct(ctx, sessionID, "ladies-custom-polo")
	require.NoError(t, err)
	assert.False(t, res.Selected)
	assert.False(t, res.State.Requirements.Required[fields.CustomPoloSpecs])

	_, err = svc.ToggleProduct(ctx, sessionID, "nope")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSubmitOnlyFromReview(t *testing.T) {
	svc, store, sub := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, sessionID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Empty(t, sub.requests)

	d := draft.New()
	d.CurrentStep = wizard.TotalSteps
	require.NoError(t, store.Save(ctx, draft.Key(sessionID), d))

	out, err := svc.Submit(ctx, sessionID, &submission.Attachment{Name: "logo.png"})
	require.NoError(t, err)
	assert.Equal(t, enums.SubmissionSent, out.Result)
	require.Len(t, sub.requests, 1)
	assert.Equal(t, draft.Key(sessionID), sub.requests[0].SessionKey)
	assert.Equal(t, "logo.png", sub.requests[0].File.Name)
}

func TestResetClearsDraft(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.SetFields(ctx, sessionID, FieldsInput{Values: contactValues()})
	require.NoError(t, err)

	state, err := svc.Reset(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Step)
	assert.Empty(t, state.Values.Values)

	_, err = store.Load(ctx, draft.Key(sessionID))
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestSummaryHTML(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.SetFields(ctx, sessionID, FieldsInput{Values: contactValues(), Products: []string{"bag-tag"}})
	require.NoError(t, err)

	html, err := svc.SummaryHTML(ctx, sessionID)
	require.NoError(t, err)
	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "Bag Tag")
}

func TestInspectLogo(t *testing.T) {
	svc, _, _ := newTestService(t)
	v, err := svc.InspectLogo(context.Background(), sessionID, validation.FileMeta{Name: "a.bmp", ContentType: "image/bmp", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, validation.MsgFileType, v.Message)
}

func TestConcurrentEditsAreSerialized(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	ids := []string{"perform-ace-black", "perform-ace-navy", "waffle-hoodie", "q-zip-pro", "bag-tag", "ball-marker"}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = svc.ToggleProduct(ctx, sessionID, id)
		}(id)
	}
	wg.Wait()

	saved, err := store.Load(ctx, draft.Key(sessionID))
	require.NoError(t, err)
	assert.Len(t, saved.Selection(), len(ids), "no toggle may be lost")
	assert.Zero(t, svc.locks.size())
}
