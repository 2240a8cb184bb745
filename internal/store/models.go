package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an alert owner. Only contact data lives here; authentication is a
// separate service.
type User struct {
	UserID         string    `gorm:"primaryKey" json:"user_id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Name           string    `gorm:"not null" json:"name"`
	DateRegistered time.Time `gorm:"autoCreateTime" json:"date_registered"`

	Alerts []PriceAlert `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TrackedProduct is a product URL under active periodic price monitoring.
// CurrentPrice is persisted directly on the product, not derived from
// history, so the retention sweep may legitimately empty the history.
type TrackedProduct struct {
	ProductID    string    `gorm:"primaryKey" json:"product_id"`
	Platform     string    `gorm:"not null" json:"platform"`
	URL          string    `gorm:"uniqueIndex;not null" json:"url"`
	Name         string    `gorm:"not null" json:"name"`
	ImageURL     string    `json:"image_url"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	CurrentPrice int64     `gorm:"not null" json:"current_price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	PricePoints []PricePoint       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Alerts      []PriceAlert       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Comparisons []ComparisonResult `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

// PricePoint is one timestamped price observation. Append-only.
type PricePoint struct {
	PointID   string    `gorm:"primaryKey" json:"point_id"`
	ProductID string    `gorm:"index;not null" json:"product_id"`
	Price     int64     `gorm:"not null" json:"price"`
	Platform  string    `gorm:"not null" json:"platform"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
}

// PriceAlert fires exactly once when a product's price falls to or below the
// target. Once Triggered is set it never reverts, and DateTriggered is set
// atomically with the triggering price update.
type PriceAlert struct {
	AlertID       string     `gorm:"primaryKey" json:"alert_id"`
	UserID        string     `gorm:"uniqueIndex:idx_alert_tuple;not null" json:"user_id"`
	ProductID     string     `gorm:"uniqueIndex:idx_alert_tuple;not null" json:"product_id"`
	TargetPrice   int64      `gorm:"uniqueIndex:idx_alert_tuple;not null" json:"target_price"`
	Active        bool       `gorm:"not null;default:true" json:"is_active"`
	Triggered     bool       `gorm:"not null;default:false" json:"is_triggered"`
	DateCreated   time.Time  `gorm:"autoCreateTime" json:"date_created"`
	DateTriggered *time.Time `json:"date_triggered,omitempty"`
}

// ComparisonResult is one matched listing on a competing platform. The full
// set for a product is replaced atomically on each comparison run.
type ComparisonResult struct {
	ComparisonID string    `gorm:"primaryKey" json:"comparison_id"`
	ProductID    string    `gorm:"index;not null" json:"product_id"`
	Platform     string    `gorm:"not null" json:"platform"`
	FoundName    string    `json:"found_name"`
	FoundPrice   int64     `json:"found_price"`
	FoundURL     string    `json:"found_url"`
	MatchScore   int       `json:"match_score"`
	LastChecked  time.Time `json:"last_checked"`
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (p *TrackedProduct) BeforeCreate(tx *gorm.DB) error {
	if p.ProductID == "" {
		p.ProductID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (p *PricePoint) BeforeCreate(tx *gorm.DB) error {
	if p.PointID == "" {
		p.PointID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (a *PriceAlert) BeforeCreate(tx *gorm.DB) error {
	if a.AlertID == "" {
		a.AlertID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a UUID primary key
func (c *ComparisonResult) BeforeCreate(tx *gorm.DB) error {
	if c.ComparisonID == "" {
		c.ComparisonID = uuid.NewString()
	}
	return nil
}
