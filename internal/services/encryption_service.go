package services

import (
	"xenoxy/internal/crypto"
	"xenoxy/internal/models"
)

// EncryptionService wraps the field cipher with profile-specific methods.
// Email and the free-text current purpose are encrypted at rest; the email
// additionally gets a blind index so login lookups still work.
type EncryptionService struct {
	cipher *crypto.FieldCipher
}

func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	cipher, err := crypto.NewFieldCipher(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: cipher}, nil
}

// EmailBlindIndex derives the lookup key for an email address.
func (s *EncryptionService) EmailBlindIndex(email string) string {
	return s.cipher.BlindIndex(email)
}

// EncryptUser encrypts sensitive user fields before storing in DB.
func (s *EncryptionService) EncryptUser(u *models.User) error {
	encrypted, blindIndex, err := s.cipher.EncryptWithBlindIndex(u.Email)
	if err != nil {
		return err
	}
	u.Email = encrypted
	u.EmailBlindIndex = blindIndex

	if u.CurrentPurpose != nil {
		p, err := s.cipher.Encrypt(*u.CurrentPurpose)
		if err != nil {
			return err
		}
		u.CurrentPurpose = &p
	}
	return nil
}

// DecryptUser decrypts sensitive user fields after retrieving from DB.
func (s *EncryptionService) DecryptUser(u *models.User) error {
	email, err := s.cipher.Decrypt(u.Email)
	if err != nil {
		return err
	}
	u.Email = email

	if u.CurrentPurpose != nil {
		p, err := s.cipher.Decrypt(*u.CurrentPurpose)
		if err != nil {
			return err
		}
		u.CurrentPurpose = &p
	}
	return nil
}

// EncryptPurpose encrypts a standalone purpose value for storage.
func (s *EncryptionService) EncryptPurpose(purpose string) (string, error) {
	return s.cipher.Encrypt(purpose)
}
