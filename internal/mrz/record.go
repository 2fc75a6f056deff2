package mrz

import "strings"

// Field names used in corrections, checks and validation issues.
const (
	FieldDocumentType   = "document_type"
	FieldIssuingState   = "issuing_state"
	FieldNames          = "names"
	FieldDocumentNumber = "document_number"
	FieldNationality    = "nationality"
	FieldBirthDate      = "birth_date"
	FieldSex            = "sex"
	FieldExpiryDate     = "expiry_date"
	FieldOptionalData   = "optional_data"
	FieldComposite      = "composite"
)

// Record is a parsed MRZ. String fields hold cleaned values; Lines keeps the
// corrected zone exactly as used for check digits and Raw the engine text.
type Record struct {
	Format              Format       `json:"format" yaml:"format"`
	DocumentType        string       `json:"document_type" yaml:"document_type"`
	IssuingState        string       `json:"issuing_state" yaml:"issuing_state"`
	Surname             string       `json:"surname" yaml:"surname"`
	GivenNames          string       `json:"given_names" yaml:"given_names"`
	DocumentNumber      string       `json:"document_number" yaml:"document_number"`
	DocumentNumberCheck string       `json:"document_number_check" yaml:"document_number_check"`
	Nationality         string       `json:"nationality" yaml:"nationality"`
	BirthDate           string       `json:"birth_date" yaml:"birth_date"`
	BirthDateCheck      string       `json:"birth_date_check" yaml:"birth_date_check"`
	Sex                 string       `json:"sex" yaml:"sex"`
	ExpiryDate          string       `json:"expiry_date" yaml:"expiry_date"`
	ExpiryDateCheck     string       `json:"expiry_date_check" yaml:"expiry_date_check"`
	OptionalData        string       `json:"optional_data" yaml:"optional_data"`
	OptionalData2       string       `json:"optional_data_2,omitempty" yaml:"optional_data_2,omitempty"`
	OptionalDataCheck   string       `json:"optional_data_check,omitempty" yaml:"optional_data_check,omitempty"`
	CompositeCheck      string       `json:"composite_check" yaml:"composite_check"`
	Lines               []string     `json:"lines" yaml:"lines"`
	Raw                 string       `json:"raw" yaml:"raw"`
	Corrections         []Correction `json:"corrections,omitempty" yaml:"corrections,omitempty"`
	Repairs             []string     `json:"repairs,omitempty" yaml:"repairs,omitempty"`
}

// MarshalText lets Format render by name in JSON and YAML.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	*f = Unknown
	for _, known := range Formats {
		if known.String() == string(text) {
			*f = known
		}
	}
	return nil
}

// CheckData returns the characters a check digit covers and the digit
// character found in the zone. ok is false when the format has no such
// check (optional data outside TD3).
func (r *Record) CheckData(field string) (data string, digit byte, ok bool) {
	lay, known := layouts[r.Format]
	if !known || len(r.Lines) != r.Format.Lines() {
		return "", 0, false
	}

	var value, check span
	switch field {
	case FieldDocumentNumber:
		value, check = lay.docNumber, lay.docNumberCheck
	case FieldBirthDate:
		value, check = lay.birth, lay.birthCheck
	case FieldExpiryDate:
		value, check = lay.expiry, lay.expiryCheck
	case FieldOptionalData:
		value, check = lay.optional, lay.optionalCheck
	case FieldComposite:
		var b strings.Builder
		for _, s := range lay.compositeData {
			b.WriteString(s.of(r.Lines))
		}
		return b.String(), lay.composite.of(r.Lines)[0], true
	default:
		return "", 0, false
	}
	if !check.present() {
		return "", 0, false
	}
	return value.of(r.Lines), check.of(r.Lines)[0], true
}

// CorrectionsFor counts table corrections applied to field.
func (r *Record) CorrectionsFor(field string) int {
	n := 0
	for _, c := range r.Corrections {
		if c.Field == field {
			n++
		}
	}
	return n
}

// Zone returns the corrected MRZ lines joined by newlines.
func (r *Record) Zone() string {
	return strings.Join(r.Lines, "\n")
}
