package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const tamanhoSenhaTemporaria = 12

// sem 0/O e 1/l/I, que confundem quando a senha é ditada por telefone
const alfabetoSenha = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func HashSenha(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerificarSenha: hash vazio (usuário sem senha definida) nunca confere.
func VerificarSenha(hash, senha string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}

// GerarSenhaTemporaria sorteia a senha entregue ao usuário criado sem senha.
func GerarSenhaTemporaria() (string, error) {
	max := big.NewInt(int64(len(alfabetoSenha)))
	out := make([]byte, tamanhoSenhaTemporaria)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alfabetoSenha[n.Int64()]
	}
	return string(out), nil
}
