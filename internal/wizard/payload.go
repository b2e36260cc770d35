package wizard

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// Payload is the serialized form handed to a [Transport]. All values are text; the selfie is a data URL.
type Payload struct {
	Name    string
	Contact string
	Reason  string
	Address string
	Message string
	Selfie  string
}

// Fields returns the payload as ordered name/value pairs, the way they are sent over the wire.
func (p Payload) Fields() [][2]string {
	return [][2]string{
		{"name", p.Name},
		{"contact", p.Contact},
		{"reason", p.Reason},
		{"address", p.Address},
		{"message", p.Message},
		{"selfie", p.Selfie},
	}
}

// Serialize converts form into a Payload. A missing selfie serializes to an empty string.
func Serialize(form FormState) Payload {
	selfie := ""
	if form.HasSelfie() {
		selfie = DataURL(*form.Selfie)
	}
	return Payload{
		Name:    form.Name,
		Contact: form.Contact,
		Reason:  string(form.Reason),
		Address: form.Address,
		Message: form.Message,
		Selfie:  selfie,
	}
}

// DataURL encodes s as a base64 data URL. The content type is sniffed when the upload didn't declare one.
func DataURL(s Selfie) string {
	contentType := s.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(s.Data)
	}
	// Drop parameters such as "; charset=utf-8".
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}
