package dicomproc

import (
	"github.com/rs/zerolog"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Outcome describes what happened to a single identifying attribute during
// anonymization.
type Outcome string

const (
	// OutcomeCleared means the attribute was replaced with an empty value.
	OutcomeCleared Outcome = "cleared"
	// OutcomeRemoved means the attribute was dropped from the dataset,
	// either by policy or because clearing it was not possible.
	OutcomeRemoved Outcome = "removed"
	// OutcomeSkipped means the attribute could neither be cleared nor
	// removed and was left untouched. Anonymization continues past it.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeAbsent means the attribute was not present in the dataset.
	OutcomeAbsent Outcome = "absent"
)

// TagResult is the per-attribute outcome of an anonymization pass.
type TagResult struct {
	Tag     tag.Tag `json:"tag"`
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
}

// clearTags are identifying attributes replaced with an empty value.
var clearTags = []tag.Tag{
	tag.PatientName,
	tag.PatientID,
	tag.PatientBirthDate,
	tag.PatientSex,
	tag.PatientAge,
	tag.PatientAddress,
	tag.PatientTelephoneNumbers,
	tag.AccessionNumber,
	tag.InstitutionName,
	tag.InstitutionAddress,
	tag.ReferringPhysicianName,
	tag.PerformingPhysicianName,
	tag.OperatorsName,
	tag.StudyID,
	tag.StudyDate,
	tag.SeriesDate,
	tag.AcquisitionDate,
	tag.StudyTime,
	tag.SeriesTime,
	tag.AcquisitionTime,
}

// dropTags are sequence-valued identifying attributes removed outright;
// an empty-string replacement is not representable for sequences.
var dropTags = []tag.Tag{
	tag.OtherPatientIDsSequence,
	tag.ReferencedPatientSequence,
}

// Anonymize returns a de-identified copy of ds. The input dataset and its
// elements are never mutated, so a caller can hold both versions safely.
//
// The pass is best-effort and non-fatal: an attribute that rejects an empty
// replacement is removed instead, and a failure to do even that is logged and
// skipped rather than aborting the remaining attributes. Every attribute in
// the identifying set gets an explicit TagResult, including absent ones.
func Anonymize(ds dicom.Dataset, log zerolog.Logger) (dicom.Dataset, []TagResult) {
	clear := make(map[tag.Tag]bool, len(clearTags))
	for _, t := range clearTags {
		clear[t] = true
	}
	drop := make(map[tag.Tag]bool, len(dropTags))
	for _, t := range dropTags {
		drop[t] = true
	}

	out := dicom.Dataset{Elements: make([]*dicom.Element, 0, len(ds.Elements))}
	seen := make(map[tag.Tag]Outcome)
	privateDropped := 0

	for _, el := range ds.Elements {
		switch {
		case el.Tag.Group%2 == 1:
			// Odd groups are vendor/private extensions, removed wholesale.
			privateDropped++
		case drop[el.Tag]:
			seen[el.Tag] = OutcomeRemoved
		case clear[el.Tag]:
			cleared, err := dicom.NewElement(el.Tag, []string{""})
			if err != nil {
				// Fall back to removing the attribute outright.
				log.Warn().
					Str("tag", el.Tag.String()).
					Str("name", tagName(el.Tag)).
					Err(err).
					Msg("could not clear identifying attribute, removing it instead")
				seen[el.Tag] = OutcomeRemoved
				continue
			}
			out.Elements = append(out.Elements, cleared)
			seen[el.Tag] = OutcomeCleared
		default:
			// Unmodified elements are shared with the input dataset; both
			// sides treat elements as immutable.
			out.Elements = append(out.Elements, el)
		}
	}

	if privateDropped > 0 {
		log.Debug().Int("count", privateDropped).Msg("removed private attributes")
	}

	results := make([]TagResult, 0, len(clearTags)+len(dropTags))
	for _, t := range clearTags {
		results = append(results, newTagResult(t, seen))
	}
	for _, t := range dropTags {
		results = append(results, newTagResult(t, seen))
	}
	return out, results
}

func newTagResult(t tag.Tag, seen map[tag.Tag]Outcome) TagResult {
	outcome, ok := seen[t]
	if !ok {
		outcome = OutcomeAbsent
	}
	return TagResult{Tag: t, Name: tagName(t), Outcome: outcome}
}

func tagName(t tag.Tag) string {
	if info, err := tag.Find(t); err == nil {
		return info.Name
	}
	return t.String()
}
