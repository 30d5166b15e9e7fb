package model

import (
	"time"
)

type Property struct {
	ID              int64     `db:"id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	Location        string    `db:"location"`
	Price           float64   `db:"price"`
	MainImage       *string   `db:"main_image"`
	RepertoryImages ImageList `db:"repertory_images"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
