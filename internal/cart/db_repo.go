package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/smehta-dev/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBPersister keeps one cart_records row per session, with the state stored
// as a serialized snapshot.
type DBPersister struct {
	conn *gorm.DB
}

// NewDBPersister prepares the cart table on the provided connection.
func NewDBPersister(conn *gorm.DB) (*DBPersister, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	if err := conn.AutoMigrate(&models.CartRecord{}); err != nil {
		return nil, fmt.Errorf("migrate cart records: %w", err)
	}
	return &DBPersister{conn: conn}, nil
}

func (d *DBPersister) Load(ctx context.Context, sessionID string) (State, bool, error) {
	var record models.CartRecord
	err := d.conn.WithContext(ctx).First(&record, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("load cart: %w", err)
	}
	state, err := DecodeState(record.State)
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (d *DBPersister) Save(ctx context.Context, sessionID string, state State) error {
	payload, err := EncodeState(state)
	if err != nil {
		return err
	}
	record := models.CartRecord{SessionID: sessionID, State: payload}
	err = d.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (d *DBPersister) Delete(ctx context.Context, sessionID string) error {
	err := d.conn.WithContext(ctx).Delete(&models.CartRecord{}, "session_id = ?", sessionID).Error
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
