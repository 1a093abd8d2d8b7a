package helper

import (
	"context"

	"gorm.io/gorm"
)

// NextOrder = max(order_index di parent) + 1. Tidak ada renumber saat delete;
// dua penulis bersamaan bisa menghasilkan order kembar (urutan kedua: created_at).
func NextOrder(ctx context.Context, db *gorm.DB, table, parentColumn string, parentID any) (int, error) {
	var maxOrder int
	err := db.WithContext(ctx).
		Table(table).
		Where(parentColumn+" = ?", parentID).
		Select("COALESCE(MAX(order_index), 0)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

// ResolveOrder: order eksplisit dari request menang.
func ResolveOrder(ctx context.Context, db *gorm.DB, explicit *int, table, parentColumn string, parentID any) (int, error) {
	if explicit != nil && *explicit > 0 {
		return *explicit, nil
	}
	return NextOrder(ctx, db, table, parentColumn, parentID)
}

// OrderByPosition: order ASC lalu created_at ASC.
func OrderByPosition(q *gorm.DB) *gorm.DB {
	return q.Order("order_index ASC").Order("created_at ASC")
}
