package wizard

// Field identifies a form value that can carry a validation error.
type Field string

const (
	FieldName     Field = "name"
	FieldContact  Field = "contact"
	FieldReason   Field = "reason"
	FieldAddress  Field = "address"
	FieldMessage  Field = "message"
	FieldSelfie   Field = "selfie"
	FieldPassword Field = "password"
)

// TextFields are the fields edited with [Controller.Edit], in submission order.
var TextFields = []Field{FieldName, FieldContact, FieldReason, FieldAddress, FieldMessage}

// Reason is the answer to "Why did you scan?".
type Reason string

const (
	ReasonJustCurious       Reason = "just_curious"
	ReasonLookedInteresting Reason = "looked_interesting"
	ReasonSomeoneTold       Reason = "someone_told"
	ReasonLoveSurprises     Reason = "love_surprises"
	ReasonTimepass          Reason = "timepass"
)

// ReasonOption pairs a reason with its display label.
type ReasonOption struct {
	Value Reason
	Label string
}

var reasonOptions = []ReasonOption{
	{Value: ReasonJustCurious, Label: "Just curious"},
	{Value: ReasonLookedInteresting, Label: "Looked interesting"},
	{Value: ReasonSomeoneTold, Label: "Someone told me"},
	{Value: ReasonLoveSurprises, Label: "I love surprises"},
	{Value: ReasonTimepass, Label: "Timepass"},
}

// ReasonOptions returns the five accepted reasons in display order.
func ReasonOptions() []ReasonOption {
	options := make([]ReasonOption, len(reasonOptions))
	copy(options, reasonOptions)
	return options
}

// Valid reports whether r is one of the five accepted reasons.
func (r Reason) Valid() bool {
	for _, option := range reasonOptions {
		if option.Value == r {
			return true
		}
	}
	return false
}

// Selfie is an uploaded image.
type Selfie struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FormState holds everything the visitor has entered so far. A nil Selfie means no image was uploaded.
type FormState struct {
	Name    string
	Contact string
	Reason  Reason
	Address string
	Message string
	Selfie  *Selfie
}

// HasSelfie reports whether a non-empty image is present.
func (f FormState) HasSelfie() bool {
	return f.Selfie != nil && len(f.Selfie.Data) > 0
}

// Value returns the text value of field.
func (f FormState) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldContact:
		return f.Contact
	case FieldReason:
		return string(f.Reason)
	case FieldAddress:
		return f.Address
	case FieldMessage:
		return f.Message
	case FieldSelfie, FieldPassword:
		return ""
	}
	return ""
}

// Errors maps a field to a human-readable message. A missing key means the field has no error.
type Errors map[Field]string

// Clone returns a copy that can be modified without affecting e.
func (e Errors) Clone() Errors {
	clone := make(Errors, len(e))
	for field, msg := range e {
		clone[field] = msg
	}
	return clone
}
