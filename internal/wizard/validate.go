package wizard

import "strings"

// Validation messages.
const (
	MsgNameRequired      = "Please enter your name"
	MsgContactRequired   = "Please enter your contact"
	MsgReasonRequired    = "Please select a reason"
	MsgAddressRequired   = "Please enter your address"
	MsgSelfieRequired    = "Please upload a selfie"
	MsgIncorrectPassword = "Incorrect password. Try again!"
)

// Validate returns the errors that block leaving slide with form. Slides without required fields are always valid.
func Validate(slide int, form FormState) Errors {
	errs := Errors{}
	switch slide {
	case SlideName:
		requireText(errs, FieldName, form.Name, MsgNameRequired)
	case SlideContact:
		requireText(errs, FieldContact, form.Contact, MsgContactRequired)
	case SlideReason:
		if !form.Reason.Valid() {
			errs[FieldReason] = MsgReasonRequired
		}
	case SlideAddress:
		requireText(errs, FieldAddress, form.Address, MsgAddressRequired)
	case SlideSelfie:
		if !form.HasSelfie() {
			errs[FieldSelfie] = MsgSelfieRequired
		}
	}
	return errs
}

func requireText(errs Errors, field Field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = msg
	}
}
