// Package storage grava os arquivos enviados (fotos, logos, assinaturas).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrExtensao indica tipo de arquivo não aceito.
var ErrExtensao = errors.New("extensão de arquivo não permitida")

var extensoesPermitidas = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// Storage abstrai onde os uploads ficam; a URL devolvida é pública.
type Storage interface {
	Salvar(ctx context.Context, pasta, nomeOriginal string, conteudo io.Reader) (string, error)
	Remover(ctx context.Context, url string) error
}

// Disco grava em Dir e expõe os arquivos em BaseURL + "/uploads/...".
type Disco struct {
	Dir     string
	BaseURL string
}

func NewDisco(dir, baseURL string) *Disco {
	return &Disco{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (d *Disco) Salvar(ctx context.Context, pasta, nomeOriginal string, conteudo io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(nomeOriginal))
	if !extensoesPermitidas[ext] {
		return "", fmt.Errorf("%w: %s", ErrExtensao, nomeOriginal)
	}

	destino := filepath.Join(d.Dir, filepath.Clean("/"+pasta))
	if err := os.MkdirAll(destino, 0o755); err != nil {
		return "", fmt.Errorf("criar pasta: %w", err)
	}

	nome := uuid.New().String() + ext
	f, err := os.Create(filepath.Join(destino, nome))
	if err != nil {
		return "", fmt.Errorf("criar arquivo: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, conteudo); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("gravar arquivo: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s/%s", d.BaseURL, strings.Trim(filepath.ToSlash(filepath.Clean("/"+pasta)), "/"), nome), nil
}

// Remover apaga o arquivo referenciado pela URL. URLs de fora do BaseURL são ignoradas.
func (d *Disco) Remover(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prefixo := d.BaseURL + "/uploads/"
	if !strings.HasPrefix(url, prefixo) {
		return nil
	}
	rel := filepath.Clean("/" + strings.TrimPrefix(url, prefixo))
	err := os.Remove(filepath.Join(d.Dir, rel))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remover arquivo: %w", err)
	}
	return nil
}
