package wizard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/littlegems/admissions/internal/validation"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

// fakeSubmitter counts submissions and can be told to fail, or to re-enter
// the wizard mid-flight (the double-click case).
type fakeSubmitter struct {
	calls   int
	err     error
	reenter func() error // runs while the first submission is still in flight
}

func (f *fakeSubmitter) Submit(_ context.Context, _ *validation.ApplicationForm) (string, error) {
	f.calls++
	if f.reenter != nil {
		re := f.reenter
		f.reenter = nil
		if err := re(); !errors.Is(err, ErrSubmitInFlight) {
			return "", fmt.Errorf("re-entrant submit: got %v, want ErrSubmitInFlight", err)
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return "LGS-000001", nil
}

func fillValid(w *Wizard) {
	f := w.Form()
	f.ParentFullName = "Akosua Mensah"
	f.ParentEmail = "akosua@example.com"
	f.ParentPhone = "+233241234567"
	f.ParentAddress = "12 Independence Avenue, Accra"
	f.ParentCity = "Accra"
	f.ParentRegion = "Greater Accra"
	f.Children[0].FirstName = "Ama"
	f.Children[0].LastName = "Mensah"
	f.Children[0].DateOfBirth = validation.Date{Time: testNow.AddDate(-2, 0, 0)}
	f.EmergencyContacts[0] = validation.ContactForm{Name: "Kojo Mensah", Relationship: "Uncle", Phone: "+233201234567"}
	f.EmergencyContacts[1] = validation.ContactForm{Name: "Efua Asante", Relationship: "Aunt", Phone: "+233209876543"}
	f.TermsAccepted = true
}

// walkToReview advances a filled wizard to the review step.
func walkToReview(t *testing.T, w *Wizard) {
	t.Helper()
	for w.Step() != StepReview {
		if !w.Next() {
			t.Fatalf("Next failed on step %d: %v", w.Step(), w.Errors())
		}
	}
}

func TestNext_BlocksOnInvalidStep(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)

	if w.Next() {
		t.Fatal("empty parent step must not advance")
	}
	if w.Step() != StepParentInfo {
		t.Fatalf("step = %d, want 1", w.Step())
	}
	if len(w.Errors()) == 0 {
		t.Fatal("expected surfaced field errors")
	}

	// Failing validation must not have touched the draft.
	if w.Form().ParentRegion != "Greater Accra" {
		t.Error("draft mutated by failed validation")
	}
}

func TestNext_AdvancesThroughAllSteps(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)
	fillValid(w)

	steps := []Step{StepChildren, StepEmergencyContacts, StepMedical, StepEducation, StepReview}
	for _, want := range steps {
		if !w.Next() {
			t.Fatalf("Next failed before step %d: %v", want, w.Errors())
		}
		if w.Step() != want {
			t.Fatalf("step = %d, want %d", w.Step(), want)
		}
	}
	// Next on the last step stays put.
	w.Next()
	if w.Step() != StepReview {
		t.Errorf("step advanced past review: %d", w.Step())
	}
}

func TestPrevious_NoValidation(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)
	fillValid(w)
	w.Next()

	// Break the draft, then go back: Previous never validates and keeps values.
	w.Form().Children[0].FirstName = "X1"
	w.Previous()
	if w.Step() != StepParentInfo {
		t.Fatalf("step = %d, want 1", w.Step())
	}
	if w.Form().Children[0].FirstName != "X1" {
		t.Error("Previous must preserve entered values")
	}
	w.Previous()
	if w.Step() != StepParentInfo {
		t.Error("Previous from step 1 must be a no-op")
	}
}

func TestEditStep_OnlyFromReview(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)
	fillValid(w)

	if w.EditStep(StepChildren) {
		t.Fatal("EditStep must be refused outside review")
	}
	walkToReview(t, w)
	if !w.EditStep(StepChildren) {
		t.Fatal("EditStep from review must work")
	}
	if w.Step() != StepChildren {
		t.Fatalf("step = %d, want %d", w.Step(), StepChildren)
	}
	// No auto-return: wizard stays where the edit put it.
	if w.EditStep(StepReview) {
		t.Error("jumping to review via EditStep is not a thing")
	}
}

func TestChildListBounds(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)

	for w.CanAddChild() {
		w.AddChild()
	}
	if n := len(w.Form().Children); n != MaxChildren {
		t.Fatalf("children = %d, want %d", n, MaxChildren)
	}
	if w.AddChild() {
		t.Error("AddChild beyond max must refuse")
	}

	for w.CanRemoveChild() {
		w.RemoveChild(0)
	}
	if n := len(w.Form().Children); n != MinChildren {
		t.Fatalf("children = %d, want %d", n, MinChildren)
	}
	if w.RemoveChild(0) {
		t.Error("RemoveChild below min must refuse")
	}
}

func TestContactListBounds(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)

	for w.CanAddContact() {
		w.AddContact()
	}
	if n := len(w.Form().EmergencyContacts); n != MaxContacts {
		t.Fatalf("contacts = %d, want %d", n, MaxContacts)
	}
	if w.RemoveContact(5) {
		t.Error("out-of-range index must refuse")
	}
	for w.CanRemoveContact() {
		w.RemoveContact(0)
	}
	if n := len(w.Form().EmergencyContacts); n != MinContacts {
		t.Fatalf("contacts = %d, want %d", n, MinContacts)
	}
	if w.RemoveContact(0) {
		t.Error("RemoveContact below min must refuse")
	}
}

func TestSetSecondParent_ClearsOnDisable(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)
	w.SetSecondParent(true)
	w.Form().SecondParentFullName = "Kofi Mensah"
	w.Form().SecondParentPhone = "+233501234567"

	w.SetSecondParent(false)
	if w.Form().SecondParentFullName != "" || w.Form().SecondParentPhone != "" {
		t.Error("disabling the second-parent section must clear its fields")
	}
}

func TestChildrenNeedingEducation_Reactive(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)
	w.AddChild()
	w.Form().Children[0].GradeLevel = "nursery"
	w.Form().Children[1].GradeLevel = "primary2"

	if got := w.ChildrenNeedingEducation(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("ChildrenNeedingEducation = %v, want [1]", got)
	}

	// Derivation follows the draft with no cached state.
	w.Form().Children[0].GradeLevel = "kg1"
	if got := w.ChildrenNeedingEducation(); len(got) != 2 {
		t.Fatalf("ChildrenNeedingEducation = %v, want both", got)
	}
}

func TestSubmit_OnlyFromReview(t *testing.T) {
	w := NewAt(&fakeSubmitter{}, clock)
	fillValid(w)
	if err := w.Submit(context.Background()); !errors.Is(err, ErrNotOnReview) {
		t.Fatalf("err = %v, want ErrNotOnReview", err)
	}
}

func TestSubmit_FullValidationCatchesLaterSteps(t *testing.T) {
	sub := &fakeSubmitter{}
	w := NewAt(sub, clock)
	fillValid(w)
	walkToReview(t, w)

	// Invalidate a step-1 field after passing it; Submit re-validates all.
	w.Form().ParentPhone = "bad"
	if err := w.Submit(context.Background()); err == nil {
		t.Fatal("expected validation failure")
	}
	if sub.calls != 0 {
		t.Error("submitter must not be called for an invalid draft")
	}
	if w.Status() != StatusEditing {
		t.Errorf("status = %d, want editing", w.Status())
	}
}

func TestSubmit_SuccessAndIdempotence(t *testing.T) {
	sub := &fakeSubmitter{}
	w := NewAt(sub, clock)
	fillValid(w)
	walkToReview(t, w)

	if err := w.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if w.Status() != StatusSubmitted || w.Reference() != "LGS-000001" {
		t.Fatalf("status=%d ref=%q", w.Status(), w.Reference())
	}

	// A second submit (double-click after completion) must not re-enter.
	if err := w.Submit(context.Background()); !errors.Is(err, ErrAlreadyDone) {
		t.Fatalf("err = %v, want ErrAlreadyDone", err)
	}
	if sub.calls != 1 {
		t.Fatalf("submitter called %d times, want 1", sub.calls)
	}
}

func TestSubmit_ReentryGuardWhileInFlight(t *testing.T) {
	sub := &fakeSubmitter{}
	w := NewAt(sub, clock)
	// Double-click: a second Submit lands while the first is in flight.
	sub.reenter = func() error { return w.Submit(context.Background()) }
	fillValid(w)
	walkToReview(t, w)

	if err := w.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if sub.calls != 1 {
		t.Fatalf("submitter called %d times, want 1", sub.calls)
	}
	if w.Status() != StatusSubmitted {
		t.Errorf("status = %d, want submitted", w.Status())
	}
}

func TestSubmit_FailureIsRetryable(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("boom")}
	w := NewAt(sub, clock)
	fillValid(w)
	walkToReview(t, w)

	if err := w.Submit(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if w.Status() != StatusFailed {
		t.Fatalf("status = %d, want failed", w.Status())
	}
	if w.Step() != StepReview {
		t.Error("failure must leave the user on the review step")
	}

	// Retry succeeds.
	sub.err = nil
	if err := w.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if w.Status() != StatusSubmitted {
		t.Errorf("status = %d, want submitted", w.Status())
	}
}
