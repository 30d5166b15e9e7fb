package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bienesraices/boutique/internal/model"
)

var ErrPropertyNotFound = errors.New("property not found")

type PropertyRepository interface {
	Create(property *model.Property) error
	ByID(id int64) (*model.Property, error)
	All() ([]*model.Property, error)
	Latest(n int) ([]*model.Property, error)
	ByRepertoryImage(path string) (*model.Property, error)
	Update(property *model.Property) error
	Delete(id int64) error
}

type propertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(property *model.Property) error {
	query := `INSERT INTO properties (name, description, location, price, main_image, repertory_images, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	result, err := r.db.Exec(query,
		property.Name,
		property.Description,
		property.Location,
		property.Price,
		property.MainImage,
		property.RepertoryImages,
		property.CreatedAt,
		property.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err == nil {
		property.ID = id
	}
	return nil
}

func (r *propertyRepository) ByID(id int64) (*model.Property, error) {
	property := &model.Property{}
	query := `SELECT * FROM properties WHERE id = $1`

	err := r.db.Get(property, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrPropertyNotFound
	}

	return property, err
}

func (r *propertyRepository) All() ([]*model.Property, error) {
	var properties []*model.Property
	query := `SELECT * FROM properties ORDER BY id`

	err := r.db.Select(&properties, query)
	if err != nil {
		return nil, err
	}

	return properties, nil
}

// Latest returns the n most recently added listings, newest first.
func (r *propertyRepository) Latest(n int) ([]*model.Property, error) {
	var properties []*model.Property
	query := `SELECT * FROM properties ORDER BY id DESC LIMIT $1`

	err := r.db.Select(&properties, query, n)
	if err != nil {
		return nil, err
	}

	return properties, nil
}

// ByRepertoryImage finds the first listing whose stored image string
// contains path. The substring match mirrors the original removal
// policy: it is not keyed by listing id and can pick the wrong row if
// two listings ever share an image path.
func (r *propertyRepository) ByRepertoryImage(path string) (*model.Property, error) {
	property := &model.Property{}
	query := `SELECT * FROM properties WHERE repertory_images LIKE '%' || $1 || '%' LIMIT 1`

	err := r.db.Get(property, query, path)
	if err == sql.ErrNoRows {
		return nil, ErrPropertyNotFound
	}

	return property, err
}

func (r *propertyRepository) Update(property *model.Property) error {
	query := `UPDATE properties
	          SET name = $1, description = $2, location = $3, price = $4,
	              main_image = $5, repertory_images = $6, updated_at = $7
	          WHERE id = $8`

	result, err := r.db.Exec(query,
		property.Name,
		property.Description,
		property.Location,
		property.Price,
		property.MainImage,
		property.RepertoryImages,
		time.Now(),
		property.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

func (r *propertyRepository) Delete(id int64) error {
	query := `DELETE FROM properties WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}

	return nil
}
