package models

import "time"

// Class is a home class or section within a campus and grade.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Campus    Campus    `db:"campus" json:"campus"`
	Grade     string    `db:"grade" json:"grade"`
	Program   string    `db:"program" json:"program"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassLoad is a class with its current roster size.
type ClassLoad struct {
	Class
	Enrolled int `db:"enrolled" json:"enrolled"`
}

// ClassCriteria selects classes a student may be placed in.
type ClassCriteria struct {
	Campus  Campus
	Grade   string
	Program string
}
