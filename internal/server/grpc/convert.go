package grpc

import (
	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
	"github.com/dmitrijs2005/glider/internal/server/models"
)

func configFromWire(c v1.PasswordConfiguration) models.PasswordConfiguration {
	return models.PasswordConfiguration{
		Length:                   c.Length,
		IncludeNumbers:           c.IncludeNumbers,
		IncludeUppercaseLetters:  c.IncludeUppercaseLetters,
		IncludeSpecialCharacters: c.IncludeSpecialCharacters,
	}
}

func configToWire(c models.PasswordConfiguration) v1.PasswordConfiguration {
	return v1.PasswordConfiguration{
		Length:                   c.Length,
		IncludeNumbers:           c.IncludeNumbers,
		IncludeUppercaseLetters:  c.IncludeUppercaseLetters,
		IncludeSpecialCharacters: c.IncludeSpecialCharacters,
	}
}

func passwordToWire(p *models.Password) v1.Password {
	return v1.Password{
		PasswordID:    p.ID,
		Type:          string(p.Type),
		Tail:          p.Tail,
		Scopes:        p.Scopes,
		Secret:        p.Secret,
		Configuration: configToWire(p.Configuration),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		DeletedAt:     p.DeletedAt,
	}
}

func eventToWire(e models.PasswordEvent) v1.PasswordEvent {
	return v1.PasswordEvent{
		EventID:    e.ID,
		PasswordID: e.PasswordID,
		DeviceID:   e.DeviceID,
		Type:       string(e.Type),
		EventDate:  e.EventDate,
	}
}

func deviceToWire(d *models.Device) v1.Device {
	return v1.Device{
		DeviceID:  d.DeviceID,
		Type:      string(d.Type),
		Brand:     d.Brand,
		Model:     d.Model,
		Browser:   d.Browser,
		LastLogin: d.LastLogin,
		Active:    d.Active,
	}
}
