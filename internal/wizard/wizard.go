// Package wizard drives the six-step admissions form: per-step validation,
// forward/back navigation, bounded child/contact lists, and the guarded
// final submission. A Wizard belongs to a single session and is not safe
// for concurrent use; all calls are expected from one goroutine.
package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/littlegems/admissions/internal/validation"
)

// Status is the submission lifecycle of the wizard.
type Status int

const (
	StatusEditing Status = iota
	StatusSubmitting
	StatusSubmitted
	StatusFailed
)

// Limits on the dynamic entity lists.
const (
	MinChildren = 1
	MaxChildren = 5
	MinContacts = 2
	MaxContacts = 5
)

var (
	ErrSubmitInFlight = errors.New("wizard: submission already in progress")
	ErrAlreadyDone    = errors.New("wizard: application already submitted")
	ErrNotOnReview    = errors.New("wizard: submit only allowed from the review step")
)

// Submitter hands the completed draft to the submission pipeline and returns
// the assigned reference number.
type Submitter interface {
	Submit(ctx context.Context, form *validation.ApplicationForm) (reference string, err error)
}

// Wizard holds the draft, the current step, and the latest validation
// failures. The draft lives only here: nothing is persisted until Submit
// succeeds end to end.
type Wizard struct {
	form      validation.ApplicationForm
	step      Step
	status    Status
	errs      validation.FieldErrors
	reference string

	submitter Submitter
	now       func() time.Time
}

// New returns a wizard on step 1 with the same defaults the form renders
// with: one blank child (creche, current intake year) and the two required
// empty contact slots.
func New(s Submitter) *Wizard {
	return NewAt(s, time.Now)
}

// NewAt is New with an injectable clock for tests.
func NewAt(s Submitter, now func() time.Time) *Wizard {
	w := &Wizard{step: StepParentInfo, submitter: s, now: now}
	w.form = validation.ApplicationForm{
		ParentRegion:      "Greater Accra",
		Children:          []validation.ChildForm{defaultChild(now())},
		EmergencyContacts: []validation.ContactForm{
			{}, {},
		},
	}
	return w
}

func defaultChild(now time.Time) validation.ChildForm {
	return validation.ChildForm{
		DateOfBirth:        validation.Date{Time: now},
		Gender:             "male",
		GradeLevel:         "creche",
		AcademicYear:       "2025/2026",
		PreferredStartDate: validation.Date{Time: now},
		MedicalInfo:        &validation.MedicalForm{BloodType: "Unknown"},
		EducationInfo:      &validation.EducationForm{},
	}
}

func (w *Wizard) Step() Step                     { return w.step }
func (w *Wizard) Status() Status                 { return w.status }
func (w *Wizard) Errors() validation.FieldErrors { return w.errs }
func (w *Wizard) Reference() string              { return w.reference }

// Form exposes the draft for reading and for field updates by the step
// views. Navigation never mutates it behind the caller's back.
func (w *Wizard) Form() *validation.ApplicationForm { return &w.form }

// validateStep runs only the validators registered for the given step.
func (w *Wizard) validateStep(s Step) validation.FieldErrors {
	switch s {
	case StepParentInfo:
		return validation.ParentInfo(&w.form)
	case StepChildren:
		return validation.Children(w.form.Children, w.now())
	case StepEmergencyContacts:
		return validation.Contacts(w.form.EmergencyContacts)
	case StepReview:
		return validation.Terms(w.form.TermsAccepted)
	default:
		// Medical and Education register no required fields.
		return nil
	}
}

// Next validates the current step and advances on success. On failure the
// wizard stays put, surfaces the field errors, and leaves the draft
// untouched.
func (w *Wizard) Next() bool {
	if errs := w.validateStep(w.step); len(errs) > 0 {
		w.errs = errs
		return false
	}
	w.errs = nil
	if w.step < StepReview {
		w.step++
	}
	return true
}

// Previous steps back without re-validating; entered values are preserved.
func (w *Wizard) Previous() {
	if w.step > StepParentInfo {
		w.step--
	}
}

// EditStep jumps from the review screen to an earlier step for a non-linear
// edit. Returning to review afterwards is the user's own navigation.
func (w *Wizard) EditStep(s Step) bool {
	if w.step != StepReview || s < StepParentInfo || s >= StepReview {
		return false
	}
	w.step = s
	return true
}

// CanAddChild / CanRemoveChild mirror the enabled state of the list buttons;
// removal below the minimum is refused rather than validated after the fact.
func (w *Wizard) CanAddChild() bool    { return len(w.form.Children) < MaxChildren }
func (w *Wizard) CanRemoveChild() bool { return len(w.form.Children) > MinChildren }

// AddChild appends a blank child entry, bounded at MaxChildren.
func (w *Wizard) AddChild() bool {
	if !w.CanAddChild() {
		return false
	}
	w.form.Children = append(w.form.Children, defaultChild(w.now()))
	return true
}

// RemoveChild deletes the child at i, refusing to drop below MinChildren.
func (w *Wizard) RemoveChild(i int) bool {
	if !w.CanRemoveChild() || i < 0 || i >= len(w.form.Children) {
		return false
	}
	w.form.Children = append(w.form.Children[:i], w.form.Children[i+1:]...)
	return true
}

func (w *Wizard) CanAddContact() bool    { return len(w.form.EmergencyContacts) < MaxContacts }
func (w *Wizard) CanRemoveContact() bool { return len(w.form.EmergencyContacts) > MinContacts }

// AddContact appends a blank emergency contact, bounded at MaxContacts.
func (w *Wizard) AddContact() bool {
	if !w.CanAddContact() {
		return false
	}
	w.form.EmergencyContacts = append(w.form.EmergencyContacts, validation.ContactForm{})
	return true
}

// RemoveContact deletes the contact at i, refusing to drop below MinContacts.
func (w *Wizard) RemoveContact(i int) bool {
	if !w.CanRemoveContact() || i < 0 || i >= len(w.form.EmergencyContacts) {
		return false
	}
	w.form.EmergencyContacts = append(w.form.EmergencyContacts[:i], w.form.EmergencyContacts[i+1:]...)
	return true
}

// SetSecondParent toggles the optional second-parent section. Turning it off
// clears any partially entered second-parent fields so stale data can never
// reach the submission payload.
func (w *Wizard) SetSecondParent(enabled bool) {
	w.form.HasSecondParent = enabled
	if !enabled {
		w.form.SecondParentFullName = ""
		w.form.SecondParentEmail = ""
		w.form.SecondParentPhone = ""
		w.form.SecondParentRelationship = ""
		w.form.SecondParentOccupation = ""
	}
}

// ChildrenNeedingEducation returns the indexes of children whose current
// grade selection calls for an educational-background sub-form. Computed
// fresh from the draft on every call; there is no cached derivation.
func (w *Wizard) ChildrenNeedingEducation() []int {
	var idx []int
	for i, c := range w.form.Children {
		if c.GradeLevel != "creche" && c.GradeLevel != "nursery" {
			idx = append(idx, i)
		}
	}
	return idx
}

// Submit runs the full-form validation and, if clean, hands the draft to the
// submission pipeline. It is guarded against re-entry: a second call while
// Submitting fails immediately, and a wizard that already submitted stays
// submitted. A failed submission returns to a retryable state on the review
// step.
func (w *Wizard) Submit(ctx context.Context) error {
	switch w.status {
	case StatusSubmitting:
		return ErrSubmitInFlight
	case StatusSubmitted:
		return ErrAlreadyDone
	}
	if w.step != StepReview {
		return ErrNotOnReview
	}
	if errs := validation.Application(&w.form, w.now()); len(errs) > 0 {
		w.errs = errs
		return errs
	}
	w.errs = nil

	w.status = StatusSubmitting
	ref, err := w.submitter.Submit(ctx, &w.form)
	if err != nil {
		w.status = StatusFailed
		return err
	}
	w.reference = ref
	w.status = StatusSubmitted
	return nil
}
