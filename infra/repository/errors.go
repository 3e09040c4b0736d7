package repository

import (
	"errors"

	"gorm.io/gorm"
)

// translate maps GORM errors to domain errors so services never see
// persistence types. notFound is the sentinel returned for
// gorm.ErrRecordNotFound; duplicate covers unique index violations.
func translate(err error, notFound, duplicate error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return duplicate
	}
	return err
}
