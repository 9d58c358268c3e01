// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Derived table names
const (
	RegionTable = "region"
	MedalsTable = "medals"
)

// Domain types

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type Profile struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex"`
	Username  string    `gorm:"size:64;not null;uniqueIndex"`
	Bio       string    `gorm:"type:text"`
	Photo     string    `gorm:"size:255"` // stored upload name, empty if none
	RegionID  *int      `gorm:"index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Region is a row of the derived region table. ID is the positional index
// assigned at load time, not a stable identifier.
type Region struct {
	ID     int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Region string `gorm:"not null;uniqueIndex" json:"region"`
}

func (Region) TableName() string { return RegionTable }

// Medal is a placeholder for the derived medals table. The seed loader
// replaces it with one column per source CSV header.
type Medal struct {
	ID int `gorm:"primaryKey;autoIncrement:false"`
}

func (Medal) TableName() string { return MedalsTable }

type CompetitionEntry struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Event     string    `gorm:"size:128;not null"`
	RegionID  *int      `gorm:"index"`
	Notes     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
}

// All returns every model the schema step migrates, in creation order.
func All() []any {
	return []any{&User{}, &Profile{}, &Region{}, &Medal{}, &CompetitionEntry{}}
}

// Form types

type SignupForm struct {
	Email    string `form:"email" validate:"required,email,max=255"`
	Password string `form:"password" validate:"required,min=8,max=72"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

type ProfileForm struct {
	Username string `form:"username" validate:"required,alphanum,min=3,max=64"`
	Bio      string `form:"bio" validate:"max=2000"`
	RegionID *int   `form:"region_id"`
}

type EntryForm struct {
	Event    string `form:"event" validate:"required,max=128"`
	RegionID *int   `form:"region_id"`
	Notes    string `form:"notes" validate:"max=2000"`
}

// Dashboard response types

type ColumnInfo struct {
	Name    string `json:"name"`
	Numeric bool   `json:"numeric"`
}

type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Series struct {
	By     string        `json:"by"`
	Value  string        `json:"value"`
	Points []SeriesPoint `json:"points"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
