package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNameTaken is returned when saving a ciphertext under a name that is
// already in use.
var ErrNameTaken = errors.New("a ciphertext with that name already exists")

// Ciphertext is a named, encrypted payload. Keys and plaintext are never
// persisted.
type Ciphertext struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex; not null"`
	Data      []byte `gorm:"not null"`
	CreatedAt time.Time
}

// FindCiphertext searches for a ciphertext with the specified name, returning
// nil if there is no match.
func FindCiphertext(db *gorm.DB, name string) (*Ciphertext, error) {
	var ciphertext Ciphertext
	err := db.Where("name = ?", name).First(&ciphertext).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &ciphertext, nil
}

// ListCiphertexts returns every stored ciphertext ordered by name.
func ListCiphertexts(db *gorm.DB) ([]Ciphertext, error) {
	var ciphertexts []Ciphertext
	if err := db.Order("name").Find(&ciphertexts).Error; err != nil {
		return nil, err
	}
	return ciphertexts, nil
}

// CreateCiphertext persists the Ciphertext record, failing with ErrNameTaken
// if the name is in use.
func CreateCiphertext(db *gorm.DB, ciphertext *Ciphertext) error {
	return db.Transaction(func(tx *gorm.DB) error {
		existing, err := FindCiphertext(tx, ciphertext.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrNameTaken
		}
		return tx.Create(ciphertext).Error
	})
}

// DeleteCiphertext removes the ciphertext with the given name and reports
// whether one existed.
func DeleteCiphertext(db *gorm.DB, name string) (bool, error) {
	result := db.Where("name = ?", name).Delete(&Ciphertext{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
