package usuario

import (
	"github.com/imobgestor/api-imobiliaria/internal/auth"
	"github.com/imobgestor/api-imobiliaria/internal/models"
	"github.com/imobgestor/api-imobiliaria/internal/utils"
)

// podeAtribuirPerfil: gerente não cria nem promove ADM_GERAL.
func podeAtribuirPerfil(ator models.Perfil, perfil models.Perfil) error {
	if !ator.Gestor() {
		return &utils.ErrProibido{Mensagem: "apenas ADM_GERAL ou GERENTE gerenciam usuários"}
	}
	if perfil == models.PerfilAdmGeral && ator != models.PerfilAdmGeral {
		return &utils.ErrProibido{Mensagem: "apenas ADM_GERAL pode atribuir o perfil ADM_GERAL"}
	}
	return nil
}

// podeGerenciar: gestores alteram outros usuários, mas gerente não mexe em ADM_GERAL.
func podeGerenciar(s auth.Sessao, alvo *Usuario) error {
	if !s.Perfil.Gestor() {
		return &utils.ErrProibido{Mensagem: "apenas ADM_GERAL ou GERENTE gerenciam usuários"}
	}
	if alvo.Perfil == models.PerfilAdmGeral && s.Perfil != models.PerfilAdmGeral {
		return &utils.ErrProibido{Mensagem: "gerente não pode alterar um ADM_GERAL"}
	}
	return nil
}

// aplicarAtualizacao copia os campos informados, respeitando o que o ator pode mudar.
// Usuário comum edita só os próprios dados básicos.
func aplicarAtualizacao(s auth.Sessao, alvo *Usuario, req AtualizarUsuarioRequest) error {
	proprio := s.UsuarioID == alvo.ID
	if !proprio {
		if err := podeGerenciar(s, alvo); err != nil {
			return err
		}
	}
	if req.Perfil != nil && *req.Perfil != alvo.Perfil {
		if proprio {
			return &utils.ErrProibido{Mensagem: "não é possível alterar o próprio perfil"}
		}
		if err := podeAtribuirPerfil(s.Perfil, *req.Perfil); err != nil {
			return err
		}
		alvo.Perfil = *req.Perfil
	}
	if req.Ativo != nil && *req.Ativo != alvo.Ativo {
		if proprio {
			return &utils.ErrProibido{Mensagem: "não é possível desativar o próprio usuário"}
		}
		alvo.Ativo = *req.Ativo
	}
	if req.Nome != nil {
		alvo.Nome = *req.Nome
	}
	if req.Email != nil {
		alvo.Email = *req.Email
	}
	if req.Telefone != nil {
		alvo.Telefone = *req.Telefone
	}
	if req.CPF != nil {
		alvo.CPF = *req.CPF
	}
	if req.Senha != nil {
		hash, err := utils.HashSenha(*req.Senha)
		if err != nil {
			return err
		}
		alvo.Senha = hash
	}
	return nil
}
