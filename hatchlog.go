package main

import (
	"database/sql"

	"github.com/google/uuid"
)

// Audit trail for draws, one row per hatch or mutation. Best effort; a
// failed insert never blocks gameplay.

func logHatch(db *sql.DB, username, eggName string, item Item, pricePaid, coinsBefore, coinsAfter int64) {
	if db == nil {
		return
	}
	_, _ = db.Exec(`
		INSERT INTO hatch_log (
			id,
			username,
			kind,
			egg_name,
			item_name,
			outcome,
			price_paid,
			multiplier,
			value_before,
			value_after,
			coins_before,
			coins_after,
			created_at
		)
		VALUES ($1, $2, 'hatch', $3, $4, $5, $6, NULL, NULL, $7, $8, $9, NOW())
	`, uuid.NewString(), username, eggName, item.Name, item.Rarity, pricePaid, item.Value, coinsBefore, coinsAfter)
}

func logMutation(db *sql.DB, username, itemName, outcome string, multiplier float64, valueBefore, valueAfter, coinsBefore, coinsAfter int64) {
	if db == nil {
		return
	}
	_, _ = db.Exec(`
		INSERT INTO hatch_log (
			id,
			username,
			kind,
			egg_name,
			item_name,
			outcome,
			price_paid,
			multiplier,
			value_before,
			value_after,
			coins_before,
			coins_after,
			created_at
		)
		VALUES ($1, $2, 'mutation', NULL, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`, uuid.NewString(), username, itemName, outcome, int64(mutationFee), multiplier, valueBefore, valueAfter, coinsBefore, coinsAfter)
}
