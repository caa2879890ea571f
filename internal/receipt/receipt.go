// Package receipt holds the receipt form state and its fixed-locale
// display formatting.
package receipt

import "time"

// Field names accepted by SetField.
const (
	FieldDate   = "date"
	FieldFrom   = "from"
	FieldAmount = "amount"
)

// FormData carries the three receipt fields as entered by the user.
// Values are raw text; nothing is validated on write.
type FormData struct {
	Date   string `json:"date"`
	From   string `json:"from"`
	Amount string `json:"amount"`
}

// Clock supplies the current time so defaults stay testable.
type Clock func() time.Time

// Form owns the receipt fields and their default values.
type Form struct {
	data  FormData
	clock Clock
}

// NewForm creates a form populated with defaults: today's date in the
// fixed locale rendering, empty payer, empty amount.
func NewForm(clock Clock) *Form {
	if clock == nil {
		clock = time.Now
	}
	f := &Form{clock: clock}
	f.Reset()
	return f
}

// SetField replaces a single field, preserving the others.
// Unknown field names are ignored.
func (f *Form) SetField(name, value string) {
	switch name {
	case FieldDate:
		f.data.Date = value
	case FieldFrom:
		f.data.From = value
	case FieldAmount:
		f.data.Amount = value
	}
}

// Reset restores the default values: current date, empty payer and amount.
func (f *Form) Reset() {
	f.data = FormData{Date: DefaultDate(f.clock())}
}

// Data returns a copy of the current field values.
func (f *Form) Data() FormData {
	return f.data
}

// DefaultDate renders t the way the browser's id-ID date formatter does:
// day/month/year with no zero padding.
func DefaultDate(t time.Time) string {
	return t.Format("2/1/2006")
}
