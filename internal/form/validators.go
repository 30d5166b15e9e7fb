package form

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bienesraices/boutique/internal/validation"
)

func Required(message string) Validator {
	if message == "" {
		message = "Este campo es obligatorio."
	}
	return func(_ url.Values, value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.New(message)
		}
		return nil
	}
}

func Email(message string) Validator {
	if message == "" {
		message = "Introduce un correo electrónico válido."
	}
	return func(_ url.Values, value string) error {
		if validation.ValidateEmail(value) != nil {
			return errors.New(message)
		}
		return nil
	}
}

func Gmail(message string) Validator {
	if message == "" {
		message = "Debes proporcionar una cuenta de Gmail válida."
	}
	return func(_ url.Values, value string) error {
		if validation.ValidateGmail(value) != nil {
			return errors.New(message)
		}
		return nil
	}
}

func Username(message string) Validator {
	if message == "" {
		message = "El nombre de usuario solo puede contener letras, números, puntos o guiones bajos."
	}
	return func(_ url.Values, value string) error {
		if validation.ValidateUsername(value) != nil {
			return errors.New(message)
		}
		return nil
	}
}

func MinLength(min int) Validator {
	return func(_ url.Values, value string) error {
		if len(value) < min {
			return fmt.Errorf("Debe tener al menos %d caracteres.", min)
		}
		return nil
	}
}

func MaxLength(max int) Validator {
	return func(_ url.Values, value string) error {
		if len(value) > max {
			return fmt.Errorf("No puede superar los %d caracteres.", max)
		}
		return nil
	}
}

func Password(minLength int) Validator {
	return func(_ url.Values, value string) error {
		err := validation.ValidatePassword(value, minLength)
		if err != nil {
			return fmt.Errorf("La contraseña debe tener al menos %d caracteres.", minLength)
		}
		return nil
	}
}

// EqualTo compares against another submitted field, for password
// confirmation inputs.
func EqualTo(field, message string) Validator {
	if message == "" {
		message = "Los valores deben coincidir."
	}
	return func(values url.Values, value string) error {
		if values.Get(field) != value {
			return errors.New(message)
		}
		return nil
	}
}

func Float(message string) Validator {
	if message == "" {
		message = "Introduce un número válido."
	}
	return func(_ url.Values, value string) error {
		_, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.New(message)
		}
		return nil
	}
}
