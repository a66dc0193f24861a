package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/littlegems/admissions/internal/models"
	"github.com/littlegems/admissions/internal/validation"
)

// ErrSubmitFailed covers persistence failures during submission; the caller
// surfaces it as a retryable 500.
var ErrSubmitFailed = errors.New("services: failed to submit application")

// Submission persists a validated application draft and sends the
// confirmation email. SQLite gives no cross-table transaction guarantee the
// way the row store is used here, so a failed child insert is compensated by
// deleting the just-created application row.
type Submission struct {
	gdb  *gorm.DB
	log  *zap.Logger
	mail EmailSender
	now  func() time.Time
}

func NewSubmission(gdb *gorm.DB, log *zap.Logger, mail EmailSender) *Submission {
	return &Submission{gdb: gdb, log: log, mail: mail, now: time.Now}
}

// SetClock overrides the clock; tests only.
func (s *Submission) SetClock(now func() time.Time) { s.now = now }

// Submit re-validates the full draft server-side, writes the Application and
// its child rows, and returns the assigned reference number. Validation
// failures come back as validation.FieldErrors; the confirmation email is
// best-effort and never fails the submission.
func (s *Submission) Submit(ctx context.Context, userID string, form *validation.ApplicationForm) (string, error) {
	now := s.now()

	// Never trust client validation.
	if errs := validation.Application(form, now); len(errs) > 0 {
		return "", errs
	}

	app := s.buildApplication(userID, form, now)
	app.ReferenceNumber = s.generateReference()
	if app.ReferenceNumber == "" {
		return "", ErrSubmitFailed
	}

	if err := s.gdb.WithContext(ctx).Create(app).Error; err != nil {
		s.log.Error("insert application failed", zap.Error(err))
		return "", ErrSubmitFailed
	}

	children := buildChildren(app.ID, form, now)
	if err := s.gdb.WithContext(ctx).Create(&children).Error; err != nil {
		s.log.Error("insert children failed", zap.Uint("application_id", app.ID), zap.Error(err))
		// Compensating rollback: no partial applications may persist.
		if derr := s.gdb.WithContext(ctx).Delete(&models.Application{}, app.ID).Error; derr != nil {
			s.log.Error("compensating delete failed, manual cleanup needed",
				zap.Uint("application_id", app.ID),
				zap.String("reference", app.ReferenceNumber),
				zap.Error(derr))
		}
		return "", ErrSubmitFailed
	}

	s.sendConfirmation(ctx, form, app.ReferenceNumber, now)
	return app.ReferenceNumber, nil
}

func (s *Submission) buildApplication(userID string, form *validation.ApplicationForm, now time.Time) *models.Application {
	email, _ := validation.NormEmail(form.ParentEmail)

	contacts := make([]models.EmergencyContact, len(form.EmergencyContacts))
	for i, c := range form.EmergencyContacts {
		contacts[i] = models.EmergencyContact{
			Name:         c.Name,
			Relationship: c.Relationship,
			Phone:        c.Phone,
			PhoneAlt:     c.PhoneAlt,
		}
	}

	app := &models.Application{
		UserID:            userID,
		ParentFullName:    form.ParentFullName,
		ParentEmail:       email,
		ParentPhone:       form.ParentPhone,
		ParentPhoneAlt:    nilIfEmpty(form.ParentPhoneAlt),
		ParentAddress:     form.ParentAddress,
		ParentCity:        form.ParentCity,
		ParentRegion:      form.ParentRegion,
		ParentOccupation:  form.ParentOccupation,
		ParentEmployer:    nilIfEmpty(form.ParentEmployer),
		EmergencyContacts: contacts,
		Status:            "pending",
		SubmittedAt:       now,
	}

	if form.HasSecondParent {
		secondEmail, _ := validation.NormEmail(form.SecondParentEmail)
		app.SecondParentFullName = nilIfEmpty(form.SecondParentFullName)
		app.SecondParentEmail = nilIfEmpty(secondEmail)
		app.SecondParentPhone = nilIfEmpty(form.SecondParentPhone)
		app.SecondParentRelationship = nilIfEmpty(form.SecondParentRelationship)
		app.SecondParentOccupation = nilIfEmpty(form.SecondParentOccupation)
	}
	return app
}

// buildChildren maps the draft children to rows, forcing education fields to
// NULL for creche/nursery placements regardless of what the client sent.
func buildChildren(appID uint, form *validation.ApplicationForm, now time.Time) []models.ApplicationChild {
	rows := make([]models.ApplicationChild, len(form.Children))
	for i, c := range form.Children {
		start := c.PreferredStartDate.Time
		if start.IsZero() {
			start = now
		}
		row := models.ApplicationChild{
			ApplicationID:      appID,
			FirstName:          c.FirstName,
			LastName:           c.LastName,
			DateOfBirth:        c.DateOfBirth.Time,
			Gender:             c.Gender,
			GradeLevel:         c.GradeLevel,
			AcademicYear:       c.AcademicYear,
			PreferredStartDate: start,
		}
		if m := c.MedicalInfo; m != nil {
			row.Allergies = nilIfEmpty(m.Allergies)
			row.MedicalConditions = nilIfEmpty(m.MedicalConditions)
			row.Medications = nilIfEmpty(m.Medications)
			row.SpecialNeeds = nilIfEmpty(m.SpecialNeeds)
			row.DietaryRestrictions = nilIfEmpty(m.DietaryRestrictions)
			row.BloodType = nilIfEmpty(m.BloodType)
			row.DoctorName = nilIfEmpty(m.DoctorName)
			row.DoctorPhone = nilIfEmpty(m.DoctorPhone)
		}
		if e := c.EducationInfo; e != nil && !models.EducationNotApplicable(c.GradeLevel) {
			row.PreviousSchoolName = nilIfEmpty(e.PreviousSchoolName)
			row.PreviousSchoolAddress = nilIfEmpty(e.PreviousSchoolAddress)
			row.PreviousSchoolPhone = nilIfEmpty(e.PreviousSchoolPhone)
			row.PreviousGradeLevel = nilIfEmpty(e.PreviousGradeLevel)
			row.ReasonForLeaving = nilIfEmpty(e.ReasonForLeaving)
		}
		rows[i] = row
	}
	return rows
}

func (s *Submission) sendConfirmation(ctx context.Context, form *validation.ApplicationForm, reference string, now time.Time) {
	names := make([]string, len(form.Children))
	for i, c := range form.Children {
		names[i] = c.FirstName + " " + c.LastName
	}
	email, _ := validation.NormEmail(form.ParentEmail)

	html, text, err := ConfirmationEmail(ConfirmationData{
		ParentName:      form.ParentFullName,
		ReferenceNumber: reference,
		ChildrenNames:   names,
		SubmissionDate:  now.Format("January 02, 2006"),
	})
	if err == nil {
		err = s.mail.Send(ctx, email, ConfirmationSubject(reference), html, text)
	}
	if err != nil {
		// Submission already succeeded; a lost email is not a failure.
		s.log.Warn("confirmation email failed", zap.String("reference", reference), zap.Error(err))
	}
}

// generateReference creates a unique LGS-xxxxxx reference number.
func (s *Submission) generateReference() string {
	for i := 0; i < 20; i++ {
		ref := fmt.Sprintf("LGS-%06d", rand.Intn(1000000))
		var exists int64
		_ = s.gdb.Model(&models.Application{}).Where("reference_number = ?", ref).Count(&exists).Error
		if exists == 0 {
			return ref
		}
	}
	return ""
}

func nilIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
