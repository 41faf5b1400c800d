package mapping

import (
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	"github.com/SscSPs/food_rescue_app/internal/models"
)

func ToModelRefreshToken(d domain.RefreshToken) models.RefreshToken {
	return models.RefreshToken{
		UserID:    d.UserID,
		Token:     d.Token,
		ExpiredAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}
}

func ToDomainRefreshToken(m models.RefreshToken) domain.RefreshToken {
	return domain.RefreshToken{
		UserID:    m.UserID,
		Token:     m.Token,
		ExpiresAt: m.ExpiredAt,
		CreatedAt: m.CreatedAt,
	}
}

func ToModelPasswordReset(d domain.PasswordReset) models.PasswordReset {
	return models.PasswordReset{
		Email:      d.Email,
		Token:      d.Token,
		CreatedAt:  d.CreatedAt,
		ConsumedAt: d.ConsumedAt,
	}
}

func ToDomainPasswordReset(m models.PasswordReset) domain.PasswordReset {
	return domain.PasswordReset{
		Email:      m.Email,
		Token:      m.Token,
		CreatedAt:  m.CreatedAt,
		ConsumedAt: m.ConsumedAt,
	}
}
