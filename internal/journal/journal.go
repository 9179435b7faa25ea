// Package journal keeps an audit trail of every answered tick in PostgreSQL.
package journal

import (
	"context"
	"time"

	"marketmaker/internal/codec"
	"marketmaker/internal/core"
	"marketmaker/internal/model"
	"marketmaker/pkg/exception"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"gorm.io/gorm"
)

const defaultWriteTimeout = 2 * time.Second

// TickRow is one answered snapshot.
type TickRow struct {
	ID          uint      `gorm:"primaryKey"`
	RunID       uuid.UUID `gorm:"type:uuid;index:idx_tick_run_ts,priority:1"`
	Timestamp   int64     `gorm:"index:idx_tick_run_ts,priority:2"`
	Products    int
	Orders      int
	Conversions int64
	TraderData  string
	CreatedAt   time.Time
}

func (TickRow) TableName() string { return "trader_ticks" }

// OrderRow is one order sent back for a tick.
type OrderRow struct {
	ID        uint      `gorm:"primaryKey"`
	RunID     uuid.UUID `gorm:"type:uuid;index:idx_order_run_ts,priority:1"`
	Timestamp int64     `gorm:"index:idx_order_run_ts,priority:2"`
	Product   string    `gorm:"size:64"`
	Price     int64
	Quantity  int64
}

func (OrderRow) TableName() string { return "trader_orders" }

// Journal writes ticks of one run. Every process start is a new run.
type Journal struct {
	db      *gorm.DB
	run     uuid.UUID
	timeout time.Duration
}

func New(db *gorm.DB) (*Journal, error) {
	if db == nil {
		return nil, errors.Wrap(exception.ErrJournalDisabled, "nil database")
	}
	return &Journal{db: db, run: uuid.New(), timeout: defaultWriteTimeout}, nil
}

// RunID identifies the rows written by this journal.
func (j *Journal) RunID() uuid.UUID {
	return j.run
}

// Record stores one tick and its orders in a single transaction.
func (j *Journal) Record(snap *model.Snapshot, out core.Output) error {
	tick, orders := buildRows(j.run, snap, out)

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tick).Error; err != nil {
			return err
		}
		if len(orders) == 0 {
			return nil
		}
		return tx.Create(&orders).Error
	})
	if err != nil {
		return errors.Wrapf(err, "journal tick %d", snap.Timestamp)
	}
	return nil
}

func buildRows(run uuid.UUID, snap *model.Snapshot, out core.Output) (TickRow, []OrderRow) {
	tick := TickRow{
		RunID:       run,
		Timestamp:   snap.Timestamp,
		Products:    len(out.Orders),
		Conversions: out.Conversions,
		TraderData:  out.TraderData,
	}

	var orders []OrderRow
	for _, p := range codec.Products(out) {
		for _, o := range out.Orders[p] {
			orders = append(orders, OrderRow{
				RunID:     run,
				Timestamp: snap.Timestamp,
				Product:   string(o.Product),
				Price:     int64(o.Price),
				Quantity:  int64(o.Quantity),
			})
		}
	}
	tick.Orders = len(orders)
	return tick, orders
}
