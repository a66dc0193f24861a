package wizard

// Step is one screen of the application wizard.
type Step int

const (
	StepParentInfo Step = iota + 1
	StepChildren
	StepEmergencyContacts
	StepMedical
	StepEducation
	StepReview
)

// StepCount is the number of wizard screens.
const StepCount = 6

// StepTitles in display order.
var StepTitles = map[Step]string{
	StepParentInfo:        "Parent Information",
	StepChildren:          "Children Information",
	StepEmergencyContacts: "Emergency Contacts",
	StepMedical:           "Medical Information",
	StepEducation:         "Educational Background",
	StepReview:            "Review & Submit",
}

// StepFields maps each step to the form fields that must validate before
// "Next" may advance past it. Medical and Education register no required
// fields: both sections are optional/conditional and are checked as part of
// their owning child entries.
var StepFields = map[Step][]string{
	StepParentInfo: {
		"parent_full_name",
		"parent_email",
		"parent_phone",
		"parent_address",
		"parent_city",
		"parent_region",
		"parent_occupation",
	},
	StepChildren:          {"children"},
	StepEmergencyContacts: {"emergency_contacts"},
	StepMedical:           {},
	StepEducation:         {},
	StepReview:            {"termsAccepted"},
}
