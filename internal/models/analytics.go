package models

// DepartmentSummary counts completed sessions per student department.
type DepartmentSummary struct {
	Department string `db:"department" json:"department"`
	Sessions   int    `db:"sessions" json:"sessions"`
	Students   int    `db:"students" json:"students"`
}

// YearSummary counts completed sessions per academic year.
type YearSummary struct {
	Year     int `db:"year" json:"year"`
	Sessions int `db:"sessions" json:"sessions"`
	Students int `db:"students" json:"students"`
}

// SeverityBucket is one bucket of the severity distribution. All three
// buckets are always present in responses, zero-filled when empty.
type SeverityBucket struct {
	Severity Severity `db:"severity" json:"severity"`
	Count    int      `db:"count" json:"count"`
}

// VolumeBucket counts sessions per calendar month.
type VolumeBucket struct {
	Month    string `db:"month" json:"month"`
	Sessions int    `db:"sessions" json:"sessions"`
}
