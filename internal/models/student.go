package models

import "database/sql/driver"

// FullyAdmittedStage is the admission stage value of an enrolled student.
const FullyAdmittedStage = 5

// Student is the subset of the student record zone analytics reads and writes.
// Admission stage and matriculation baseline are stored in more than one shape;
// use AdmissionStage and MatriculationBaseline rather than the raw fields.
type Student struct {
	ID       string  `db:"id" json:"id"`
	FullName string  `db:"full_name" json:"full_name"`
	Gender   string  `db:"gender" json:"gender"`
	Program  string  `db:"program" json:"program"`
	Grade    string  `db:"grade" json:"grade"`
	ClassID  *string `db:"class_id" json:"class_id,omitempty"`

	CurrentAdmissionStage *int `db:"admission_stage" json:"admission_stage,omitempty"`
	LegacyAdmissionStage  *int `db:"legacy_admission_stage" json:"legacy_admission_stage,omitempty"`

	MatricMarks      *float64       `db:"matric_marks" json:"matric_marks,omitempty"`
	MatricTotal      *float64       `db:"matric_total" json:"matric_total,omitempty"`
	MatricPercentage *float64       `db:"matric_percentage" json:"matric_percentage,omitempty"`
	MatricSubjects   MatricSubjects `db:"matric_subjects" json:"matric_subjects,omitempty"`
}

// HasClass reports whether the student has a home class.
func (s *Student) HasClass() bool {
	return s.ClassID != nil && *s.ClassID != ""
}

// Campus derives the student's campus from gender.
func (s *Student) Campus() Campus {
	return CampusForGender(s.Gender)
}

// MatricSubject is one subject of the structured matriculation record.
type MatricSubject struct {
	Name     string  `json:"name"`
	Obtained float64 `json:"obtained"`
	Total    float64 `json:"total"`
}

// MatricSubjects is persisted as JSONB.
type MatricSubjects []MatricSubject

// Value marshals the subject list.
func (m MatricSubjects) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return jsonValue(m, "matric subjects")
}

// Scan unmarshals the subject list.
func (m *MatricSubjects) Scan(value interface{}) error {
	*m = nil
	return scanJSON(value, m, "matric subjects")
}

// variant is one named way of reading a value that may be stored in several
// shapes. Readers are tried in order and the first present value wins.
type variant[T any] struct {
	name string
	read func(*Student) (T, bool)
}

func firstOf[T any](s *Student, variants ...variant[T]) (T, string, bool) {
	for _, v := range variants {
		if value, ok := v.read(s); ok {
			return value, v.name, true
		}
	}
	var zero T
	return zero, "", false
}

var admissionStageVariants = []variant[int]{
	{name: "admission_stage", read: func(s *Student) (int, bool) {
		if s.CurrentAdmissionStage == nil {
			return 0, false
		}
		return *s.CurrentAdmissionStage, true
	}},
	{name: "legacy_admission_stage", read: func(s *Student) (int, bool) {
		if s.LegacyAdmissionStage == nil {
			return 0, false
		}
		return *s.LegacyAdmissionStage, true
	}},
}

// AdmissionStage returns the first non-null admission stage.
func (s *Student) AdmissionStage() (int, bool) {
	stage, _, ok := firstOf(s, admissionStageVariants...)
	return stage, ok
}

// IsFullyAdmitted reports whether the admission stage equals the enrolled sentinel.
func (s *Student) IsFullyAdmitted() bool {
	stage, ok := s.AdmissionStage()
	return ok && stage == FullyAdmittedStage
}

// BaselineSource names where a matriculation baseline was read from.
type BaselineSource string

const (
	BaselineLegacyMarks BaselineSource = "legacy_marks"
	BaselinePercentage  BaselineSource = "percentage"
	BaselineSubjects    BaselineSource = "subjects"
)

// Baseline is the matriculation reference score.
type Baseline struct {
	Percentage float64
	Source     BaselineSource
	Subjects   MatricSubjects
}

var baselineVariants = []variant[Baseline]{
	{name: string(BaselineLegacyMarks), read: func(s *Student) (Baseline, bool) {
		if s.MatricMarks == nil || s.MatricTotal == nil || *s.MatricTotal <= 0 {
			return Baseline{}, false
		}
		return Baseline{Percentage: WeightedPercentage(*s.MatricMarks, *s.MatricTotal), Source: BaselineLegacyMarks}, true
	}},
	{name: string(BaselinePercentage), read: func(s *Student) (Baseline, bool) {
		if s.MatricPercentage == nil {
			return Baseline{}, false
		}
		return Baseline{Percentage: RoundPercentage(*s.MatricPercentage), Source: BaselinePercentage}, true
	}},
	{name: string(BaselineSubjects), read: func(s *Student) (Baseline, bool) {
		var obtained, total float64
		graded := make(MatricSubjects, 0, len(s.MatricSubjects))
		for _, subject := range s.MatricSubjects {
			if subject.Total <= 0 {
				continue
			}
			obtained += subject.Obtained
			total += subject.Total
			graded = append(graded, subject)
		}
		if len(graded) == 0 {
			return Baseline{}, false
		}
		return Baseline{Percentage: WeightedPercentage(obtained, total), Source: BaselineSubjects, Subjects: graded}, true
	}},
}

// MatriculationBaseline returns the baseline from the first populated source:
// legacy flat marks, then the structured percentage, then the subject list.
func (s *Student) MatriculationBaseline() (Baseline, bool) {
	baseline, _, ok := firstOf(s, baselineVariants...)
	return baseline, ok
}

// StudentFilter scopes bulk student reads.
type StudentFilter struct {
	IDs        []string
	Unassigned bool
	Admitted   bool
}
