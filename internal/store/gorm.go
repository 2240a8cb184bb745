package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pricepulse/pkg/errors"
)

// GormStore implements Store on PostgreSQL via gorm
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// Open connects to the database and runs migrations
func Open(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &GormStore{db: db}, nil
}

// NewGormStore wraps an existing gorm connection (used by tests)
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&TrackedProduct{},
		&PricePoint{},
		&PriceAlert{},
		&ComparisonResult{},
	)
}

// CreateProduct inserts a product and its initial price point in one transaction
func (s *GormStore) CreateProduct(ctx context.Context, product *TrackedProduct) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&TrackedProduct{}).Where("url = ?", product.URL).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.NewConflict("product already being tracked: " + product.URL)
		}

		// A concurrent insert can slip past the count and land on the
		// unique URL index instead
		if err := tx.Create(product).Error; err != nil {
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.NewConflict("product already being tracked: " + product.URL)
			}
			return err
		}

		point := PricePoint{
			ProductID: product.ProductID,
			Price:     product.CurrentPrice,
			Platform:  product.Platform,
			Timestamp: time.Now().UTC(),
		}
		return tx.Create(&point).Error
	})
}

// Product loads one product by id
func (s *GormStore) Product(ctx context.Context, productID string) (*TrackedProduct, error) {
	var product TrackedProduct
	err := s.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewNotFound("product", productID)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductByURL loads one product by its canonical URL
func (s *GormStore) ProductByURL(ctx context.Context, url string) (*TrackedProduct, error) {
	var product TrackedProduct
	err := s.db.WithContext(ctx).First(&product, "url = ?", url).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewNotFound("product", url)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Products lists tracked products
func (s *GormStore) Products(ctx context.Context, limit, offset int) ([]TrackedProduct, error) {
	var products []TrackedProduct
	query := s.db.WithContext(ctx).Order("created_at")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// DeleteProduct removes a product with its owned rows
func (s *GormStore) DeleteProduct(ctx context.Context, productID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Explicit child deletes so the cascade does not depend on how the
		// FK constraints were migrated
		if err := tx.Where("product_id = ?", productID).Delete(&PricePoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&PriceAlert{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&ComparisonResult{}).Error; err != nil {
			return err
		}

		result := tx.Where("product_id = ?", productID).Delete(&TrackedProduct{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFound("product", productID)
		}
		return nil
	})
}

// History returns a product's price points, newest first
func (s *GormStore) History(ctx context.Context, productID string, limit int) ([]PricePoint, error) {
	var points []PricePoint
	query := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&points).Error; err != nil {
		return nil, err
	}
	return points, nil
}

// Comparisons returns a product's current comparison set
func (s *GormStore) Comparisons(ctx context.Context, productID string) ([]ComparisonResult, error) {
	var results []ComparisonResult
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("platform").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// EnsureUser finds or creates the user owning an alert contact
func (s *GormStore) EnsureUser(ctx context.Context, email, name string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err == nil {
		return &user, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = User{Email: email, Name: name}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAlert inserts an alert, rejecting duplicate (user, product, target) tuples
func (s *GormStore) CreateAlert(ctx context.Context, alert *PriceAlert) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&PriceAlert{}).
			Where("user_id = ? AND product_id = ? AND target_price = ?",
				alert.UserID, alert.ProductID, alert.TargetPrice).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.NewConflict("alert already exists for this product and target price")
		}
		if err := tx.Create(alert).Error; err != nil {
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.NewConflict("alert already exists for this product and target price")
			}
			return err
		}
		return nil
	})
}

// Alert loads one alert by id
func (s *GormStore) Alert(ctx context.Context, alertID string) (*PriceAlert, error) {
	var alert PriceAlert
	err := s.db.WithContext(ctx).First(&alert, "alert_id = ?", alertID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewNotFound("alert", alertID)
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// AlertsForProduct lists a product's alerts
func (s *GormStore) AlertsForProduct(ctx context.Context, productID string) ([]PriceAlert, error) {
	var alerts []PriceAlert
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("date_created").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// DeleteAlert removes an alert
func (s *GormStore) DeleteAlert(ctx context.Context, alertID string) error {
	result := s.db.WithContext(ctx).Where("alert_id = ?", alertID).Delete(&PriceAlert{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFound("alert", alertID)
	}
	return nil
}

// ApplyPriceUpdate records a fresh price observation in one transaction
func (s *GormStore) ApplyPriceUpdate(ctx context.Context, productID string, price int64, at time.Time) ([]TriggeredAlert, error) {
	var triggered []TriggeredAlert

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product TrackedProduct
		if err := tx.First(&product, "product_id = ?", productID).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NewNotFound("product", productID)
			}
			return err
		}

		err := tx.Model(&product).Updates(map[string]interface{}{
			"current_price": price,
			"updated_at":    at,
		}).Error
		if err != nil {
			return err
		}

		point := PricePoint{
			ProductID: productID,
			Price:     price,
			Platform:  product.Platform,
			Timestamp: at,
		}
		if err := tx.Create(&point).Error; err != nil {
			return err
		}

		var alerts []PriceAlert
		err = tx.Where("product_id = ? AND active = ? AND triggered = ? AND target_price >= ?",
			productID, true, false, price).
			Find(&alerts).Error
		if err != nil {
			return err
		}

		for i := range alerts {
			alerts[i].Triggered = true
			ts := at
			alerts[i].DateTriggered = &ts
			if err := tx.Save(&alerts[i]).Error; err != nil {
				return err
			}

			var user User
			if err := tx.First(&user, "user_id = ?", alerts[i].UserID).Error; err != nil {
				return err
			}
			triggered = append(triggered, TriggeredAlert{
				Alert: alerts[i],
				Email: user.Email,
				Name:  user.Name,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return triggered, nil
}

// ReplaceComparisons swaps a product's full comparison set in one transaction
func (s *GormStore) ReplaceComparisons(ctx context.Context, productID string, results []ComparisonResult) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&ComparisonResult{}).Error; err != nil {
			return err
		}
		for i := range results {
			results[i].ProductID = productID
			if err := tx.Create(&results[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// PruneHistory deletes price points observed before the cutoff
func (s *GormStore) PruneHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&PricePoint{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
