package database

import "gorm.io/gorm"

// OrderBy adds ordering to a query
func OrderBy(field string, desc bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		order := field
		if desc {
			order = field + " DESC"
		}
		return db.Order(order)
	}
}
