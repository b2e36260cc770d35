package wizard_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/surprise/internal/wizard"
)

func TestValidate(t *testing.T) {
	selfie := &wizard.Selfie{Filename: "me.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	tests := []struct {
		name  string
		slide int
		form  wizard.FormState
		want  wizard.Errors
	}{
		{name: "welcome is always valid", slide: wizard.SlideWelcome, want: wizard.Errors{}},
		{name: "message is optional", slide: wizard.SlideMessage, want: wizard.Errors{}},
		{name: "gate has no field rules", slide: wizard.SlidePassword, want: wizard.Errors{}},
		{
			name:  "empty name",
			slide: wizard.SlideName,
			want:  wizard.Errors{wizard.FieldName: wizard.MsgNameRequired},
		},
		{
			name:  "whitespace name",
			slide: wizard.SlideName,
			form:  wizard.FormState{Name: " \t\n"},
			want:  wizard.Errors{wizard.FieldName: wizard.MsgNameRequired},
		},
		{
			name:  "name present",
			slide: wizard.SlideName,
			form:  wizard.FormState{Name: "A"},
			want:  wizard.Errors{},
		},
		{
			name:  "only the active slide is checked",
			slide: wizard.SlideContact,
			form:  wizard.FormState{Contact: "b@x.com"},
			want:  wizard.Errors{},
		},
		{
			name:  "whitespace contact",
			slide: wizard.SlideContact,
			form:  wizard.FormState{Name: "A", Contact: "   "},
			want:  wizard.Errors{wizard.FieldContact: wizard.MsgContactRequired},
		},
		{
			name:  "missing reason",
			slide: wizard.SlideReason,
			want:  wizard.Errors{wizard.FieldReason: wizard.MsgReasonRequired},
		},
		{
			name:  "unknown reason",
			slide: wizard.SlideReason,
			form:  wizard.FormState{Reason: "because"},
			want:  wizard.Errors{wizard.FieldReason: wizard.MsgReasonRequired},
		},
		{
			name:  "reason is case sensitive",
			slide: wizard.SlideReason,
			form:  wizard.FormState{Reason: "Timepass"},
			want:  wizard.Errors{wizard.FieldReason: wizard.MsgReasonRequired},
		},
		{
			name:  "whitespace address",
			slide: wizard.SlideAddress,
			form:  wizard.FormState{Address: "\n"},
			want:  wizard.Errors{wizard.FieldAddress: wizard.MsgAddressRequired},
		},
		{
			name:  "missing selfie",
			slide: wizard.SlideSelfie,
			want:  wizard.Errors{wizard.FieldSelfie: wizard.MsgSelfieRequired},
		},
		{
			name:  "empty selfie upload",
			slide: wizard.SlideSelfie,
			form:  wizard.FormState{Selfie: &wizard.Selfie{Filename: "empty.png"}},
			want:  wizard.Errors{wizard.FieldSelfie: wizard.MsgSelfieRequired},
		},
		{
			name:  "selfie present",
			slide: wizard.SlideSelfie,
			form:  wizard.FormState{Selfie: selfie},
			want:  wizard.Errors{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wizard.Validate(tt.slide, tt.form)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateAcceptsEveryReason(t *testing.T) {
	options := wizard.ReasonOptions()
	if len(options) != 5 { //nolint:mnd // five fixed reasons
		t.Fatalf("got %d reasons, want 5", len(options))
	}
	for _, option := range options {
		t.Run(string(option.Value), func(t *testing.T) {
			got := wizard.Validate(wizard.SlideReason, wizard.FormState{Reason: option.Value})
			if diff := cmp.Diff(wizard.Errors{}, got); diff != "" {
				t.Errorf("Validate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
