package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func seedBonusTiersMigration() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_seed_bonus_tiers",
		Migrate: func(tx *gorm.DB) error {
			// Default tier ladder. Bands are contiguous over [0, inf) and
			// percents are non-decreasing with min_amount.
			return tx.Exec(`
				INSERT INTO bonus_tiers (id, name, min_amount, max_amount, bonus_percent, sort_order, created_at, updated_at)
				VALUES
					(uuid_generate_v4(), 'Consultant', 0,       500000,  8,  1, NOW(), NOW()),
					(uuid_generate_v4(), 'Manager',    500000,  1000000, 10, 2, NOW(), NOW()),
					(uuid_generate_v4(), 'Director',   1000000, NULL,    13, 3, NOW(), NOW())
				ON CONFLICT DO NOTHING
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DELETE FROM bonus_tiers").Error
		},
	}
}

func init() {
	migrationsList = append(migrationsList, seedBonusTiersMigration())
}
