package userprofile

import (
	"time"

	"github.com/frahmantamala/lms-backend/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
)

type Profile struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	FirstName   *string   `json:"first_name,omitempty"`
	LastName    *string   `json:"last_name,omitempty"`
	DateOfBirth *string   `json:"date_of_birth,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromDataModel(p *userDatamodel.Profile) *Profile {
	out := &Profile{
		ID:          p.ID,
		UserID:      p.UserID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PhoneNumber: p.PhoneNumber,
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.DateOfBirth != nil {
		d := p.DateOfBirth.Format(validation.DateLayout)
		out.DateOfBirth = &d
	}
	return out
}

// parseDate expects a value that already passed validation.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(validation.DateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
