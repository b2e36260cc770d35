package wizard

// Kind describes how a slide is left.
type Kind int

const (
	// KindIntro slides only show text.
	KindIntro Kind = iota
	// KindForm slides collect a field that is validated on advance.
	KindForm
	// KindSubmit is the last data-entry slide. Advancing from it submits the form.
	KindSubmit
	// KindGate slides are left only through [Controller.Unlock].
	KindGate
	// KindTerminal slides have no outgoing transitions.
	KindTerminal
)

// Slide positions.
const (
	SlideWelcome = iota
	SlideDisclaimer
	SlideRequirements
	SlideName
	SlideContact
	SlideReason
	SlideAddress
	SlideMessage
	SlideSelfie
	SlidePassword
	SlideReveal

	slideCount
)

// FirstSlide and LastSlide bound the valid positions.
const (
	FirstSlide = SlideWelcome
	LastSlide  = SlideReveal
)

// progressSteps is the denominator of the progress indicator.
const progressSteps = 8

// Slide is one screen of the wizard.
type Slide struct {
	Index int
	Key   string
	Kind  Kind
	Title string
	// Field is the field collected on this slide, empty on slides without input.
	Field Field
	// Text is the static copy shown on intro slides.
	Text string
}

const welcomeText = `If you're seeing this, then congratulations. That's a rare privilege, carefully curated, strictly ` +
	`limited, and proudly drama-free. Only limited people have access to this.

Now, before we move forward toward the surprise I've been hyping up (yes, the one you're already curious about), ` +
	`there's a tiny but important step. Please read the following disclaimer with patience, good humor, and minimal ` +
	`judgment. It exists purely for fun, suspense, and my own peace of mind.

All set? Great. Let's move forward.`

const disclaimerText = `PLEASE READ CAREFULLY...

Go somewhere quiet and sit peacefully, preferably alone, away from unnecessary opinions, suspicious side-eyes, ` +
	`and over-curious humans.

Also, keep this very important rule in mind: until you receive your surprise, do not tell anyone about it. Not ` +
	`friends, not family, not that one person who knows everything. You may be disqualified… or who knows, kisi ki ` +
	`nazar lag jaye. We take emotional safety very seriously here.

This gift is just a small reminder of appreciation, gratitude, and the comfort of knowing that our connection is ` +
	`valued. No pressure, no expectations, just something thoughtful, sent with good intent, and a little excitement!`

const requirementsText = `If you have read disclaimer and Accept the terms and conditions then continue..

just continue with a smile

...................

yeah that one is good`

var slides = [slideCount]Slide{
	{Index: SlideWelcome, Key: "welcome", Kind: KindIntro, Title: "Hey there", Text: welcomeText},
	{Index: SlideDisclaimer, Key: "disclaimer", Kind: KindIntro, Title: "Important Notice", Text: disclaimerText},
	{Index: SlideRequirements, Key: "requirements", Kind: KindIntro, Title: "System Requirements",
		Text: requirementsText},
	{Index: SlideName, Key: "name", Kind: KindForm, Title: "Your Name", Field: FieldName},
	{Index: SlideContact, Key: "contact", Kind: KindForm, Title: "Contact", Field: FieldContact},
	{Index: SlideReason, Key: "reason", Kind: KindForm, Title: "Why Did You Scan?", Field: FieldReason},
	{Index: SlideAddress, Key: "address", Kind: KindForm, Title: "Delivery Address", Field: FieldAddress},
	{Index: SlideMessage, Key: "message", Kind: KindForm, Title: "Message", Field: FieldMessage},
	{Index: SlideSelfie, Key: "selfie", Kind: KindSubmit, Title: "Selfie", Field: FieldSelfie},
	{Index: SlidePassword, Key: "password", Kind: KindGate, Title: "Secret Password", Field: FieldPassword},
	{Index: SlideReveal, Key: "reveal", Kind: KindTerminal, Title: "Date Revealed"},
}

// Slides returns the fixed slide catalogue ordered by position.
func Slides() []Slide {
	return append([]Slide(nil), slides[:]...)
}

// SlideAt returns the slide at position and whether the position exists.
func SlideAt(position int) (Slide, bool) {
	if position < FirstSlide || position > LastSlide {
		return Slide{}, false
	}
	return slides[position], true
}

// Progress is the state of the step indicator.
type Progress struct {
	Step    int
	Total   int
	Percent int
}

// progressAt returns the indicator for position. It is hidden on the welcome, disclaimer, gate and reveal slides.
func progressAt(position int) (Progress, bool) {
	if position <= SlideWelcome || position == SlideDisclaimer || position >= SlidePassword {
		return Progress{}, false
	}
	return Progress{
		Step:    position,
		Total:   progressSteps,
		Percent: (position*100 + progressSteps/2) / progressSteps, //nolint:mnd // rounded percentage
	}, true
}
