package models

import (
	"time"

	"gorm.io/gorm"
)

type Test struct {
	gorm.Model
	Title           string `gorm:"not null"`
	Description     string
	DurationMinutes int `gorm:"not null"`
	TotalMarks      int
	CreatorID       uint `gorm:"not null"`
	IsPublic        bool `gorm:"default:false"` // true if assigned to all students
	Questions       []TestQuestion
	Results         []TestResult
}

type TestQuestion struct {
	gorm.Model
	TestID        uint `gorm:"not null"`
	QuestionID    uint `gorm:"not null"`
	SequenceOrder int  `gorm:"not null"`
}

type TestResult struct {
	gorm.Model
	TestID     uint `gorm:"not null"`
	StudentID  uint `gorm:"not null"`
	StartTime  time.Time
	EndTime    *time.Time
	TotalScore *float64
	Completed  bool `gorm:"default:false"`
	Answers    []QuestionAnswer
}

type QuestionAnswer struct {
	gorm.Model
	TestResultID  uint `gorm:"not null"`
	QuestionID    uint `gorm:"not null"`
	StudentAnswer string
	IsCorrect     *bool
	Score         *float64
}
