package repository

import "context"

// User representa un usuario del directorio.
type User struct {
	ID    string `yaml:"id" bson:"_id"`
	Email string `yaml:"email" bson:"email"`
	Name  string `yaml:"name" bson:"name"`
}

// Field retorna el valor del campo identificatorio pedido ("email", "name", "id").
// Retorna nil si el campo no existe o está vacío.
func (u *User) Field(name string) *string {
	if u == nil {
		return nil
	}
	var v string
	switch name {
	case "email":
		v = u.Email
	case "name":
		v = u.Name
	case "id":
		v = u.ID
	}
	if v == "" {
		return nil
	}
	return &v
}

// UserRepository resuelve el subject de un token contra el directorio de usuarios.
type UserRepository interface {
	// FindByID retorna ErrNotFound si el usuario no existe.
	FindByID(ctx context.Context, userID string) (*User, error)
}
