package auth

import "time"

// RefreshToken guarda apenas o hash do token entregue no cookie.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"`
	UsuarioID uint      `gorm:"index"`
	EmpresaID uint      `gorm:"index"`
	FamilyID  string    `gorm:"index"`
	Hash      string    `gorm:"uniqueIndex"`
	ExpiresAt time.Time `gorm:"index"`
	RevokedAt *time.Time
	CreatedAt time.Time
}
