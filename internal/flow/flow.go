// Package flow implements the account onboarding state machine: a visitor
// either registers a brand-new account or claims an existing historical
// rider record, ending with a single-use activation code.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/k-ivanov/bgx/internal/bgx"
)

var (
	// ErrBusy means a submission is already in flight; the attempt is
	// dropped, not queued.
	ErrBusy = errors.New("submission already in flight")

	// ErrInvalidTransition means the requested operation is not legal in
	// the current state.
	ErrInvalidTransition = errors.New("invalid flow transition")
)

// RegistrationType is chosen at ChooseType and fixed for the rest of the
// flow instance.
type RegistrationType string

const (
	TypeNew   RegistrationType = "new"
	TypeClaim RegistrationType = "claim"
)

// Errors carries per-field message arrays plus general banner messages for
// the current state. Submitted form values are kept alongside so a field
// error never wipes its siblings.
type Errors struct {
	Fields  map[string][]string
	General []string
}

func (e Errors) Field(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) HasGeneral() bool { return len(e.General) > 0 }

func (e Errors) Empty() bool { return len(e.Fields) == 0 && len(e.General) == 0 }

func fieldErrors(pairs map[string]string) Errors {
	errs := Errors{Fields: make(map[string][]string, len(pairs))}
	for field, msg := range pairs {
		errs.Fields[field] = []string{msg}
	}
	return errs
}

// errorsFrom folds an operation failure into the display model: structured
// API errors keep their field mapping, anything else becomes a banner.
func errorsFrom(err error) Errors {
	var apiErr *bgx.APIError
	if errors.As(err, &apiErr) {
		fields := make(map[string][]string, len(apiErr.Fields))
		for k, v := range apiErr.Fields {
			fields[k] = v
		}
		general := apiErr.General
		if len(fields) == 0 && len(general) == 0 {
			general = []string{"Something went wrong. Please try again."}
		}
		return Errors{Fields: fields, General: general}
	}
	return Errors{General: []string{"Something went wrong. Please try again."}}
}

// ---------------------------------------------------------------------------
// States
// ---------------------------------------------------------------------------

// State is the tagged union of flow steps. Each variant carries exactly
// the data valid in that step, so e.g. a claim submission without a bound
// rider is unrepresentable.
type State interface{ isState() }

// ChooseType is the initial step: pick new registration or claim.
type ChooseType struct{}

// MatchOrRegisterForm shows either the direct registration form (TypeNew)
// or the rider match form (TypeClaim).
type MatchOrRegisterForm struct {
	Type     RegistrationType
	Errors   Errors
	Register bgx.RegisterRequest // retained values, TypeNew branch
	Match    bgx.MatchQuery      // retained values, TypeClaim branch
}

// CandidateSelection lists matched riders in server-returned order.
type CandidateSelection struct {
	Query      bgx.MatchQuery
	Candidates []bgx.RiderCandidate
}

// ClaimForm collects credentials for the selected rider. The candidate
// list is retained so Back can restore the selection step.
type ClaimForm struct {
	Query      bgx.MatchQuery
	Candidates []bgx.RiderCandidate
	Selected   bgx.RiderCandidate
	Errors     Errors
	Claim      bgx.ClaimRequest // retained values
}

// Success is terminal: the activation code is shown once and handed to the
// activation flow or written down by the user. It is never persisted here.
type Success struct {
	Type           RegistrationType
	ActivationCode string
	User           *bgx.User // set on the claim path
}

func (ChooseType) isState()          {}
func (MatchOrRegisterForm) isState() {}
func (CandidateSelection) isState()  {}
func (ClaimForm) isState()           {}
func (Success) isState()             {}

// ---------------------------------------------------------------------------
// Flow
// ---------------------------------------------------------------------------

// Service is the slice of the API client the flow needs.
type Service interface {
	MatchRider(ctx context.Context, query bgx.MatchQuery) (bgx.MatchResult, error)
	ClaimAccount(ctx context.Context, req bgx.ClaimRequest) (bgx.ClaimResult, error)
	Register(ctx context.Context, req bgx.RegisterRequest) (bgx.RegisterResult, error)
}

// Flow is one onboarding attempt for one visitor. At most one submission
// is in flight at a time; a response that arrives after the visitor has
// navigated to another step is discarded.
type Flow struct {
	svc Service

	mu       sync.Mutex
	state    State
	inFlight bool
	gen      uint64
}

func New(svc Service) *Flow {
	return &Flow{svc: svc, state: ChooseType{}}
}

// State returns the current step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Busy reports whether a submission is outstanding.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Choose picks the registration type and moves to the form step.
func (f *Flow) Choose(t RegistrationType) error {
	if t != TypeNew && t != TypeClaim {
		return ErrInvalidTransition
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.(ChooseType); !ok {
		return ErrInvalidTransition
	}
	f.transition(MatchOrRegisterForm{Type: t})
	return nil
}

// Back steps backwards: form -> ChooseType (clearing the type tag),
// ClaimForm -> CandidateSelection (selection list retained). Success has
// no way back.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch s := f.state.(type) {
	case MatchOrRegisterForm:
		f.transition(ChooseType{})
	case ClaimForm:
		f.transition(CandidateSelection{Query: s.Query, Candidates: s.Candidates})
	default:
		return ErrInvalidTransition
	}
	return nil
}

// SearchAgain returns from candidate selection to a fresh match form; no
// prior query values are carried over.
func (f *Flow) SearchAgain() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.state.(CandidateSelection); !ok {
		return ErrInvalidTransition
	}
	f.transition(MatchOrRegisterForm{Type: TypeClaim})
	return nil
}

// Cancel resets the flow to its initial step. Any in-flight submission's
// eventual result is discarded.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transition(ChooseType{})
}

// SubmitRegister validates and submits a new-account registration from the
// TypeNew form branch.
func (f *Flow) SubmitRegister(ctx context.Context, req bgx.RegisterRequest) error {
	f.mu.Lock()
	form, ok := f.state.(MatchOrRegisterForm)
	if !ok || form.Type != TypeNew {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if f.inFlight {
		f.mu.Unlock()
		return ErrBusy
	}

	if errs := validatePassword(req.Password, req.Password2); !errs.Empty() {
		f.state = MatchOrRegisterForm{Type: TypeNew, Errors: errs, Register: req}
		f.mu.Unlock()
		return nil
	}

	gen := f.gen
	f.inFlight = true
	f.mu.Unlock()

	result, err := f.svc.Register(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settle(gen) {
		return nil
	}
	if err != nil {
		f.state = MatchOrRegisterForm{Type: TypeNew, Errors: errorsFrom(err), Register: req}
		return nil
	}
	// Success is unreachable without a code to hand to activation.
	if result.ActivationCode == "" {
		f.state = MatchOrRegisterForm{
			Type:     TypeNew,
			Errors:   Errors{General: []string{"Registration failed. Please try again."}},
			Register: req,
		}
		return nil
	}
	f.transition(Success{Type: TypeNew, ActivationCode: result.ActivationCode})
	return nil
}

// SubmitMatch submits a rider search from the TypeClaim form branch. An
// empty match set keeps the form and surfaces the server message verbatim.
func (f *Flow) SubmitMatch(ctx context.Context, query bgx.MatchQuery) error {
	f.mu.Lock()
	form, ok := f.state.(MatchOrRegisterForm)
	if !ok || form.Type != TypeClaim {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if f.inFlight {
		f.mu.Unlock()
		return ErrBusy
	}

	local := make(map[string]string)
	if strings.TrimSpace(query.FirstName) == "" {
		local["first_name"] = "First name is required"
	}
	if strings.TrimSpace(query.LastName) == "" {
		local["last_name"] = "Last name is required"
	}
	if len(local) > 0 {
		f.state = MatchOrRegisterForm{Type: TypeClaim, Errors: fieldErrors(local), Match: query}
		f.mu.Unlock()
		return nil
	}

	gen := f.gen
	f.inFlight = true
	f.mu.Unlock()

	result, err := f.svc.MatchRider(ctx, query)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settle(gen) {
		return nil
	}
	if err != nil {
		f.state = MatchOrRegisterForm{Type: TypeClaim, Errors: errorsFrom(err), Match: query}
		return nil
	}
	if len(result.Matches) == 0 {
		f.state = MatchOrRegisterForm{
			Type:   TypeClaim,
			Errors: Errors{General: []string{result.Message}},
			Match:  query,
		}
		return nil
	}
	f.transition(CandidateSelection{Query: query, Candidates: result.Matches})
	return nil
}

// SelectCandidate binds one matched rider and moves to the claim form.
// Picking one discards the rest for this flow instance.
func (f *Flow) SelectCandidate(riderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sel, ok := f.state.(CandidateSelection)
	if !ok {
		return ErrInvalidTransition
	}
	for _, cand := range sel.Candidates {
		if cand.ID == riderID {
			f.transition(ClaimForm{
				Query:      sel.Query,
				Candidates: sel.Candidates,
				Selected:   cand,
			})
			return nil
		}
	}
	return ErrInvalidTransition
}

// SubmitClaim validates and submits the claim for the bound rider. The
// rider id always comes from the state, never from the caller.
func (f *Flow) SubmitClaim(ctx context.Context, username, email, password, password2 string) error {
	f.mu.Lock()
	form, ok := f.state.(ClaimForm)
	if !ok {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if f.inFlight {
		f.mu.Unlock()
		return ErrBusy
	}

	req := bgx.ClaimRequest{
		RiderID:   form.Selected.ID,
		Username:  username,
		Email:     email,
		Password:  password,
		Password2: password2,
	}

	if errs := validatePassword(password, password2); !errs.Empty() {
		form.Errors = errs
		form.Claim = req
		f.state = form
		f.mu.Unlock()
		return nil
	}

	gen := f.gen
	f.inFlight = true
	f.mu.Unlock()

	result, err := f.svc.ClaimAccount(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.settle(gen) {
		return nil
	}
	if err != nil {
		form.Errors = errorsFrom(err)
		form.Claim = req
		f.state = form
		return nil
	}
	if result.ActivationCode == "" {
		form.Errors = Errors{General: []string{"Claim failed. Please try again."}}
		form.Claim = req
		f.state = form
		return nil
	}
	user := result.User
	f.transition(Success{Type: TypeClaim, ActivationCode: result.ActivationCode, User: &user})
	return nil
}

// transition replaces the state and invalidates any outstanding request so
// its late response cannot mutate the new step.
func (f *Flow) transition(s State) {
	f.state = s
	f.gen++
	f.inFlight = false
}

// settle ends an in-flight request. It reports false when the visitor
// navigated away while the request was outstanding, in which case the
// response must be discarded.
func (f *Flow) settle(gen uint64) bool {
	if f.gen != gen {
		return false
	}
	f.inFlight = false
	return true
}

// validatePassword runs the local checks that must never cost a round
// trip: matching confirmation and minimum length.
func validatePassword(password, password2 string) Errors {
	local := make(map[string]string)
	if password != password2 {
		local["password2"] = "Passwords don't match"
	}
	if len(password) < 8 {
		local["password"] = "Password must be at least 8 characters"
	}
	if len(local) == 0 {
		return Errors{}
	}
	return fieldErrors(local)
}
