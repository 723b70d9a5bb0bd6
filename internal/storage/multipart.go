package storage

import (
	"fmt"
	"mime/multipart"
	"net/http"
)

// MaxUpload limita o corpo multipart de um envio.
const MaxUpload = 20 << 20

// ArquivosDoForm lê os arquivos do campo informado de um multipart/form-data.
func ArquivosDoForm(w http.ResponseWriter, r *http.Request, campo string) ([]*multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUpload)
	if err := r.ParseMultipartForm(MaxUpload); err != nil {
		return nil, fmt.Errorf("formulário multipart inválido: %w", err)
	}
	arquivos := r.MultipartForm.File[campo]
	if len(arquivos) == 0 {
		return nil, fmt.Errorf("nenhum arquivo no campo %q", campo)
	}
	return arquivos, nil
}
