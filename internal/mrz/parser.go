// Package mrz parses ICAO 9303 machine readable zones: layout detection,
// field slicing, OCR confusion correction, check digits and date
// normalisation.
package mrz

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
)

type fieldSpan struct {
	field string
	span  span
}

// Parse cleans text, detects its layout and slices it into a Record.
// Letters in numeric positions (dates and check digits) are mapped to
// digits and digits in alphabetic fields to letters; every change is
// listed in Record.Corrections.
func Parse(text string) (*Record, error) {
	cleaned := Clean(text)
	format := Detect(cleaned)
	if format == Unknown {
		n := len(strings.ReplaceAll(cleaned, "\n", ""))
		return nil, errs.Parse("detect format", fmt.Errorf("%w: %d characters (want %d, %d or %d)",
			errs.ErrUnknownFormat, n, TD1.Size(), TD2.Size(), TD3.Size()))
	}

	lay := layouts[format]
	rec := &Record{
		Format: format,
		Raw:    text,
		Lines:  Split(cleaned, format),
	}

	rec.correct(ToDigits, []fieldSpan{
		{FieldDocumentNumber, lay.docNumberCheck},
		{FieldBirthDate, lay.birth},
		{FieldBirthDate, lay.birthCheck},
		{FieldExpiryDate, lay.expiry},
		{FieldExpiryDate, lay.expiryCheck},
		{FieldOptionalData, lay.optionalCheck},
		{FieldComposite, lay.composite},
	})
	rec.correct(ToLetters, []fieldSpan{
		{FieldDocumentType, lay.docType},
		{FieldIssuingState, lay.issuer},
		{FieldNationality, lay.nationality},
		{FieldNames, lay.names},
	})

	lines := rec.Lines
	rec.DocumentType = strings.TrimRight(lay.docType.of(lines), string(Filler))
	rec.IssuingState = spaced(lay.issuer.of(lines))
	rec.Surname, rec.GivenNames = splitNames(lay.names.of(lines))
	rec.DocumentNumber = stripped(lay.docNumber.of(lines))
	rec.DocumentNumberCheck = lay.docNumberCheck.of(lines)
	rec.Nationality = spaced(lay.nationality.of(lines))
	rec.BirthDate = stripped(lay.birth.of(lines))
	rec.BirthDateCheck = lay.birthCheck.of(lines)
	rec.Sex = sexCode(lay.sex.of(lines))
	rec.ExpiryDate = stripped(lay.expiry.of(lines))
	rec.ExpiryDateCheck = lay.expiryCheck.of(lines)
	rec.OptionalData = spaced(lay.optional.of(lines))
	rec.OptionalData2 = spaced(lay.optional2.of(lines))
	rec.OptionalDataCheck = lay.optionalCheck.of(lines)
	rec.CompositeCheck = lay.composite.of(lines)

	return rec, nil
}

func (r *Record) correct(fn func(string) (string, []int), spans []fieldSpan) {
	for _, fs := range spans {
		if !fs.span.present() {
			continue
		}
		line := r.Lines[fs.span.line]
		seg := line[fs.span.start:fs.span.end]
		fixed, changed := fn(seg)
		if len(changed) == 0 {
			continue
		}
		for _, i := range changed {
			r.Corrections = append(r.Corrections, Correction{
				Field:    fs.field,
				Position: fs.span.start + i,
				From:     seg[i : i+1],
				To:       fixed[i : i+1],
			})
		}
		r.Lines[fs.span.line] = line[:fs.span.start] + fixed + line[fs.span.end:]
	}
}

// splitNames separates the primary and secondary identifiers at the first
// double filler.
func splitNames(field string) (surname, given string) {
	primary, secondary, _ := strings.Cut(field, "<<")
	return spaced(primary), spaced(secondary)
}

// spaced turns fillers into single spaces and trims.
func spaced(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, string(Filler), " ")), " ")
}

// stripped removes fillers entirely.
func stripped(s string) string {
	return strings.ReplaceAll(s, string(Filler), "")
}

func sexCode(s string) string {
	if s == "" || s == string(Filler) {
		return "X"
	}
	return s
}
