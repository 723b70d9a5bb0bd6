// Package models reúne os enums e a base comum às entidades da API.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Base substitui gorm.Model para serializar os campos em camelCase.
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DaEmpresa restringe a consulta aos registros da empresa (tenant) da sessão.
func DaEmpresa(empresaID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("empresa_id = ?", empresaID)
	}
}

type Perfil string

const (
	PerfilAdmGeral Perfil = "ADM_GERAL"
	PerfilGerente  Perfil = "GERENTE"
	PerfilCorretor Perfil = "CORRETOR"
	PerfilSuporte  Perfil = "SUPORTE"
)

func (p Perfil) Valido() bool {
	switch p {
	case PerfilAdmGeral, PerfilGerente, PerfilCorretor, PerfilSuporte:
		return true
	}
	return false
}

// Gestor indica perfis que administram usuários e configurações.
func (p Perfil) Gestor() bool {
	return p == PerfilAdmGeral || p == PerfilGerente
}

type TipoNegocio string

const (
	TipoVenda   TipoNegocio = "VENDA"
	TipoAluguel TipoNegocio = "ALUGUEL"
)

func (t TipoNegocio) Valido() bool {
	return t == TipoVenda || t == TipoAluguel
}

type StatusNegociacao string

const (
	StatusProspeccao StatusNegociacao = "PROSPECCAO"
	StatusVisita     StatusNegociacao = "VISITA"
	StatusProposta   StatusNegociacao = "PROPOSTA"
	StatusFechado    StatusNegociacao = "FECHADO"
	StatusPerdido    StatusNegociacao = "PERDIDO"
	StatusCancelado  StatusNegociacao = "CANCELADO"
)

// TodosStatusNegociacao na ordem do funil.
var TodosStatusNegociacao = []StatusNegociacao{
	StatusProspeccao, StatusVisita, StatusProposta, StatusFechado, StatusPerdido, StatusCancelado,
}

func (s StatusNegociacao) Valido() bool {
	for _, v := range TodosStatusNegociacao {
		if s == v {
			return true
		}
	}
	return false
}

// Aberto indica negociação ainda em andamento no funil.
func (s StatusNegociacao) Aberto() bool {
	return s == StatusProspeccao || s == StatusVisita || s == StatusProposta
}

type TipoTransacao string

const (
	TipoReceita TipoTransacao = "RECEITA"
	TipoDespesa TipoTransacao = "DESPESA"
)

func (t TipoTransacao) Valido() bool {
	return t == TipoReceita || t == TipoDespesa
}

type StatusTransacao string

const (
	TransacaoPendente  StatusTransacao = "PENDENTE"
	TransacaoPago      StatusTransacao = "PAGO"
	TransacaoCancelado StatusTransacao = "CANCELADO"
	TransacaoAtrasado  StatusTransacao = "ATRASADO"
)

func (s StatusTransacao) Valido() bool {
	switch s {
	case TransacaoPendente, TransacaoPago, TransacaoCancelado, TransacaoAtrasado:
		return true
	}
	return false
}

type StatusImovel string

const (
	ImovelDisponivel StatusImovel = "DISPONIVEL"
	ImovelReservado  StatusImovel = "RESERVADO"
	ImovelVendido    StatusImovel = "VENDIDO"
	ImovelAlugado    StatusImovel = "ALUGADO"
	ImovelInativo    StatusImovel = "INATIVO"
)

func (s StatusImovel) Valido() bool {
	switch s {
	case ImovelDisponivel, ImovelReservado, ImovelVendido, ImovelAlugado, ImovelInativo:
		return true
	}
	return false
}
