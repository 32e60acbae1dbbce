package service

import (
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

func registerInput(name, email, password string) ports.RegisterInput {
	return ports.RegisterInput{DisplayName: name, Email: email, Password: password}
}

func staffInput(name, username, email string, role domain.Role, by *domain.Principal) ports.CreateStaffInput {
	return ports.CreateStaffInput{
		DisplayName: name,
		Username:    username,
		Email:       email,
		Password:    "password1",
		Role:        role,
		CreatedBy:   by,
	}
}
