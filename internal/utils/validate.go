package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validador() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			return CPFValido(fl.Field().String())
		})
		_ = validate.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
			return CNPJValido(fl.Field().String())
		})
		_ = validate.RegisterValidation("telefone", func(fl validator.FieldLevel) bool {
			n := len(SomenteDigitos(fl.Field().String()))
			return n == 10 || n == 11
		})
	})
	return validate
}

// Validar aplica as tags `validate` de v e devolve ErrValidacao com uma
// mensagem por campo inválido.
func Validar(v any) error {
	err := validador().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, mensagemCampo(fe))
	}
	return &ErrValidacao{Mensagens: msgs}
}

func mensagemCampo(fe validator.FieldError) string {
	campo := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", campo)
	case "required_without":
		return fmt.Sprintf("informe %s ou %s", campo, strings.ToLower(fe.Param()))
	case "email":
		return fmt.Sprintf("%s deve ser um e-mail válido", campo)
	case "oneof":
		return fmt.Sprintf("%s deve ser um de: %s", campo, fe.Param())
	case "gt":
		return fmt.Sprintf("%s deve ser maior que %s", campo, fe.Param())
	case "gte":
		return fmt.Sprintf("%s deve ser maior ou igual a %s", campo, fe.Param())
	case "lte":
		return fmt.Sprintf("%s deve ser menor ou igual a %s", campo, fe.Param())
	case "min":
		return fmt.Sprintf("%s deve ter no mínimo %s caracteres", campo, fe.Param())
	case "max":
		return fmt.Sprintf("%s deve ter no máximo %s caracteres", campo, fe.Param())
	case "len":
		return fmt.Sprintf("%s deve ter %s caracteres", campo, fe.Param())
	case "cpf", "cnpj":
		return fmt.Sprintf("%s inválido", campo)
	case "telefone":
		return fmt.Sprintf("%s deve ter DDD + 8 ou 9 dígitos", campo)
	}
	return fmt.Sprintf("%s inválido", campo)
}
