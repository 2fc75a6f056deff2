package validation

import (
	"math"

	"github.com/lehigh-university-libraries/mrzscan/internal/mrz"
)

// UnknownConfidence marks engines that report no confidence.
const UnknownConfidence = -1.0

const (
	correctionPenalty = 0.1
	checkedFloor      = 0.95
	failedFactor      = 0.5
)

// Confidence scores each extracted field in [0,1].
type Confidence struct {
	Fields  map[string]float64 `json:"fields" yaml:"fields"`
	Overall float64            `json:"overall" yaml:"overall"`
}

var scoredFields = []string{
	mrz.FieldDocumentType,
	mrz.FieldIssuingState,
	mrz.FieldNames,
	mrz.FieldDocumentNumber,
	mrz.FieldNationality,
	mrz.FieldBirthDate,
	mrz.FieldSex,
	mrz.FieldExpiryDate,
	mrz.FieldOptionalData,
}

// score starts every field at the engine confidence, takes 0.1 off per
// corrected character, halves fields whose check digit failed and lifts
// fields whose check digit passed to at least 0.95.
func score(rec *mrz.Record, ocr float64, checks map[string]bool) Confidence {
	base := ocr
	if base < 0 || base > 1 {
		base = 1
	}

	conf := Confidence{Fields: make(map[string]float64, len(scoredFields))}
	var total float64
	for _, field := range scoredFields {
		c := base - correctionPenalty*float64(rec.CorrectionsFor(field))
		if passed, checked := checks[field]; checked {
			if passed {
				c = math.Max(c, checkedFloor)
			} else {
				c *= failedFactor
			}
		}
		c = math.Max(0, math.Min(1, c))
		conf.Fields[field] = c
		total += c
	}
	conf.Overall = total / float64(len(scoredFields))
	return conf
}
