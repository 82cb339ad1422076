package service

import (
	"errors"
	"fmt"
)

// ErroNegocio is a business-rule violation. Its message is shown to the
// attendant as-is; these errors are never retried.
type ErroNegocio struct {
	Codigo   string
	Mensagem string
}

func (e *ErroNegocio) Error() string { return e.Mensagem }

func novoErro(codigo, mensagem string) *ErroNegocio {
	return &ErroNegocio{Codigo: codigo, Mensagem: mensagem}
}

var (
	ErrQuartoOcupado        = novoErro("QUARTO_OCUPADO", "o quarto já possui uma ocupação ativa")
	ErrAcompanhanteInvalido = novoErro("ACOMPANHANTE_INVALIDO", "acompanhante inválida ou sem turno aberto")
	ErrTransicaoInvalida    = novoErro("TRANSICAO_INVALIDA", "operação não permitida no estado atual da ocupação")
	ErrJaFinalizada         = novoErro("JA_FINALIZADA", "a ocupação já foi finalizada ou cancelada")
	ErrValorInvalido        = novoErro("VALOR_INVALIDO", "valor inválido")
	ErrMotivoObrigatorio    = novoErro("MOTIVO_OBRIGATORIO", "informe o motivo")
	ErrConfiguracaoInvalida = novoErro("CONFIGURACAO_INVALIDA", "tabela de faixas de preço inválida")
	ErrComandasAbertas      = novoErro("COMANDAS_ABERTAS", "existem comandas em aberto")
	ErrSessaoJaAberta       = novoErro("SESSAO_JA_ABERTA", "já existe um caixa aberto")
	ErrSemSessaoAberta      = novoErro("SEM_SESSAO_ABERTA", "não há caixa aberto")
	ErrPersistencia         = novoErro("PERSISTENCIA", "falha ao gravar os dados, tente novamente")

	ErrNaoEncontrado           = novoErro("NAO_ENCONTRADO", "registro não encontrado")
	ErrFaixaInvalida           = novoErro("FAIXA_INVALIDA", "faixa de preço não encontrada na tabela ativa")
	ErrQuartoInvalido          = novoErro("QUARTO_INVALIDO", "quarto inexistente ou inativo")
	ErrComandaNaoAberta        = novoErro("COMANDA_NAO_ABERTA", "a comanda não está aberta")
	ErrComandaComOcupacaoAtiva = novoErro("COMANDA_COM_OCUPACAO_ATIVA", "a comanda possui ocupação de quarto em andamento")
	ErrComandaComLancamentos   = novoErro("COMANDA_COM_LANCAMENTOS", "a comanda já possui lançamentos")
	ErrModoInvalido            = novoErro("MODO_INVALIDO", "modo de cobrança deve ser fixo ou tempo_livre")
	ErrIDInvalido              = novoErro("ID_INVALIDO", "identificador inválido")
)

// erroComandasAbertas keeps ErrComandasAbertas matchable with errors.Is while
// telling the cashier how many tabs block the close.
func erroComandasAbertas(n int64) error {
	return fmt.Errorf("%w: %d comanda(s) precisam ser fechadas ou canceladas", ErrComandasAbertas, n)
}

// IsErroNegocio reports whether err carries a business-rule violation and
// returns it.
func IsErroNegocio(err error) (*ErroNegocio, bool) {
	var e *ErroNegocio
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
