package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tariff *Tariff) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tariff, error)
	List(ctx context.Context, db *gorm.DB) ([]Tariff, error)
}
