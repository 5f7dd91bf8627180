package dicomproc

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func mustNewElement(t *testing.T, tg tag.Tag, data interface{}) *dicom.Element {
	t.Helper()
	el, err := dicom.NewElement(tg, data)
	if err != nil {
		t.Fatalf("NewElement(%v) failed: %v", tg, err)
	}
	return el
}

func mustNewValue(t *testing.T, data interface{}) dicom.Value {
	t.Helper()
	v, err := dicom.NewValue(data)
	if err != nil {
		t.Fatalf("NewValue failed: %v", err)
	}
	return v
}

func stringValue(t *testing.T, ds dicom.Dataset, tg tag.Tag) (string, bool) {
	t.Helper()
	el, err := ds.FindElementByTag(tg)
	if err != nil {
		return "", false
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func outcomeFor(results []TagResult, tg tag.Tag) Outcome {
	for _, r := range results {
		if r.Tag == tg {
			return r.Outcome
		}
	}
	return ""
}

func TestAnonymizeClearsIdentifyingAttributes(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientName, []string{"DOE^JANE"}),
		mustNewElement(t, tag.PatientID, []string{"PAT-0042"}),
		mustNewElement(t, tag.StudyDate, []string{"20240115"}),
		mustNewElement(t, tag.Modality, []string{"CT"}),
	}}

	anon, results := Anonymize(ds, zerolog.Nop())

	for _, tg := range []tag.Tag{tag.PatientName, tag.PatientID, tag.StudyDate} {
		got, ok := stringValue(t, anon, tg)
		if !ok {
			t.Fatalf("expected %v to remain present but empty", tg)
		}
		if got != "" {
			t.Errorf("expected %v cleared, got %q", tg, got)
		}
		if outcomeFor(results, tg) != OutcomeCleared {
			t.Errorf("expected outcome cleared for %v, got %v", tg, outcomeFor(results, tg))
		}
	}

	// Non-identifying attributes survive untouched.
	if got, _ := stringValue(t, anon, tag.Modality); got != "CT" {
		t.Errorf("expected modality preserved, got %q", got)
	}
}

func TestAnonymizeDoesNotMutateOriginal(t *testing.T) {
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientName, []string{"DOE^JANE"}),
		mustNewElement(t, tag.AccessionNumber, []string{"ACC-7"}),
	}}

	_, _ = Anonymize(ds, zerolog.Nop())

	if got, _ := stringValue(t, ds, tag.PatientName); got != "DOE^JANE" {
		t.Errorf("original patient name mutated: %q", got)
	}
	if got, _ := stringValue(t, ds, tag.AccessionNumber); got != "ACC-7" {
		t.Errorf("original accession number mutated: %q", got)
	}
	if len(ds.Elements) != 2 {
		t.Errorf("original element count changed: %d", len(ds.Elements))
	}
}

func TestAnonymizeToleratesAbsentAttributes(t *testing.T) {
	// Only a subset of the identifying set is present.
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientName, []string{"DOE^JANE"}),
	}}

	anon, results := Anonymize(ds, zerolog.Nop())

	if got, _ := stringValue(t, anon, tag.PatientName); got != "" {
		t.Errorf("expected patient name cleared, got %q", got)
	}
	if outcomeFor(results, tag.PatientBirthDate) != OutcomeAbsent {
		t.Errorf("expected absent outcome for birth date, got %v", outcomeFor(results, tag.PatientBirthDate))
	}
	if outcomeFor(results, tag.OtherPatientIDsSequence) != OutcomeAbsent {
		t.Errorf("expected absent outcome for other-patient-IDs sequence")
	}

	// Every attribute of the identifying set is reported.
	if len(results) != len(clearTags)+len(dropTags) {
		t.Errorf("expected %d results, got %d", len(clearTags)+len(dropTags), len(results))
	}
}

func TestAnonymizeRemovesSequencesAndPrivateElements(t *testing.T) {
	seq := mustNewElement(t, tag.OtherPatientIDsSequence, [][]*dicom.Element{
		{mustNewElement(t, tag.PatientID, []string{"OLD-1"})},
	})
	private := &dicom.Element{
		Tag:                    tag.Tag{Group: 0x0009, Element: 0x0010},
		RawValueRepresentation: "LO",
		Value:                  mustNewValue(t, []string{"ACME PROPRIETARY"}),
	}
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(t, tag.PatientName, []string{"DOE^JANE"}),
		seq,
		private,
	}}

	anon, results := Anonymize(ds, zerolog.Nop())

	if _, err := anon.FindElementByTag(tag.OtherPatientIDsSequence); err == nil {
		t.Error("expected other-patient-IDs sequence removed")
	}
	if outcomeFor(results, tag.OtherPatientIDsSequence) != OutcomeRemoved {
		t.Errorf("expected removed outcome, got %v", outcomeFor(results, tag.OtherPatientIDsSequence))
	}
	if _, err := anon.FindElementByTag(private.Tag); err == nil {
		t.Error("expected private element removed")
	}

	// Original keeps all three elements.
	if len(ds.Elements) != 3 {
		t.Errorf("original element count changed: %d", len(ds.Elements))
	}
}
