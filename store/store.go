// Package store persists item price series in MySQL and serves them back as a
// rpi.PriceResolver.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/date"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is the price of an item on a day.
type Snapshot struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	ItemID    int64           `json:"item_id" gorm:"uniqueIndex:idx_item_day;not null"`
	Day       time.Time       `json:"day" gorm:"type:date;uniqueIndex:idx_item_day;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store is a rpi.PriceResolver reading snapshots from the database.
// It is safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// Open connects to the MySQL database at dsn and migrates the schema.
//
// dsn is a go-sql-driver DSN, e.g. "user:pass@tcp(localhost:3306)/rpi?parseTime=True".
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshots: %w", err)
	}
	log.Println("Database initialized successfully")
	return New(db), nil
}

// New returns a Store on an already opened database.
func New(db *gorm.DB) *Store { return &Store{db: db} }

// Close closes the underlying connections.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// upsert inserts snapshots, updating the price of existing (item, day) pairs.
func (s *Store) upsert(ctx context.Context, rows []Snapshot) *gorm.DB {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&rows)
}

// Save stores every price of series for item id. It returns the number of saved snapshots.
func (s *Store) Save(ctx context.Context, id rpi.ItemID, series *rpi.PriceSeries) (int, error) {
	rows := snapshots(id, series)
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.upsert(ctx, rows).Error; err != nil {
		return 0, fmt.Errorf("cannot save prices of item %d: %w", id, err)
	}
	return len(rows), nil
}

// PriceSeries implements rpi.PriceResolver. Query failures are logged and reported
// as absent, so is an item without snapshots.
func (s *Store) PriceSeries(ctx context.Context, id rpi.ItemID) (*rpi.PriceSeries, bool) {
	var rows []Snapshot
	err := s.db.WithContext(ctx).Where("item_id = ?", int64(id)).Order("day").Find(&rows).Error
	if err != nil {
		log.Printf("cannot read prices of item %d: %v", id, err)
		return nil, false
	}
	if len(rows) == 0 {
		return nil, false
	}
	return series(rows), true
}

// snapshots converts a series into rows.
func snapshots(id rpi.ItemID, s *rpi.PriceSeries) []Snapshot {
	var rows []Snapshot
	for on, p := range s.Points() {
		rows = append(rows, Snapshot{ItemID: int64(id), Day: on.Time(), Price: p.Decimal()})
	}
	return rows
}

// series converts rows back into a series.
func series(rows []Snapshot) *rpi.PriceSeries {
	s := new(rpi.PriceSeries)
	for _, row := range rows {
		s.Append(date.FromTime(row.Day), rpi.P(row.Price))
	}
	return s
}
