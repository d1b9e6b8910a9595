package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStatement = `EUROCAJA RURAL;;;;
Titular: EJEMPLO EJEMPLO;;;;
Cuenta: ES00 0000 0000 0000 0000 0000;;;;
;;;;
Fecha de ejecución;Fecha valor;Descripción;Importe;Saldo
15/01/2024 10:30;15/01/2024;COMPRA TJ********1234 SUPERMERCADO DIA;-24,15 €;1.956,02 €
16/01/2024;17/01/2024;RECIBO   LUZ IBERDROLA 16/01/24;-55,30 €;1.900,72 €
25/01/2024;25/01/2024;NOMINA EMPRESA SL;1.250,00 €;3.150,72 €
`

func TestEurocajaRural_ParseStatement(t *testing.T) {
	drafts, skips := ParseStatement(NewEurocajaRural(), sampleStatement)

	require.Len(t, drafts, 3)
	assert.Empty(t, skips)

	assert.Equal(t, "2024-01-15", drafts[0].Date)
	assert.Equal(t, "10:30", drafts[0].Time)
	assert.Equal(t, "COMPRA TJ**** SUPERMERCADO DIA", drafts[0].Description)
	assert.Equal(t, "-24.15", drafts[0].Amount.String())
	assert.Equal(t, "1956.02", drafts[0].Balance.String())
	assert.Equal(t, "Eurocaja Rural", drafts[0].Bank)
	assert.Equal(t, "2024-01-15", drafts[0].ValueDate)

	// Trailing embedded date and repeated spaces are cleaned away.
	assert.Equal(t, "RECIBO LUZ IBERDROLA", drafts[1].Description)
	assert.Equal(t, "00:00", drafts[1].Time)
	assert.Equal(t, "2024-01-17", drafts[1].ValueDate)

	assert.Equal(t, "1250", drafts[2].Amount.String())
}

func TestEurocajaRural_NoHeader(t *testing.T) {
	// A file from some other bank has no Eurocaja header: empty result,
	// no error, nothing parsed.
	drafts, skips := ParseStatement(NewEurocajaRural(), "fecha,concepto,importe\n01/01/2024,algo,5\n")
	assert.Empty(t, drafts)
	assert.Empty(t, skips)
}

func TestEurocajaRural_RejectsBadRows(t *testing.T) {
	raw := `Fecha de ejecución;Fecha valor;Descripción;Importe;Saldo
;;sin fecha;-1,00 €;0,00 €
15/01/2024;15/01/2024;;-1,00 €;0,00 €
15/01/2024;15/01/2024;importe roto;abc;0,00 €
corto;linea
15/01/2024;15/01/2024;VALIDA;-1,00 €;0,00 €
`
	drafts, skips := ParseStatement(NewEurocajaRural(), raw)

	require.Len(t, drafts, 1)
	assert.Equal(t, "VALIDA", drafts[0].Description)

	require.Len(t, skips, 4)
	assert.Equal(t, 2, skips[0].Line)
	assert.Contains(t, skips[2].Reason, "invalid amount")
	assert.Contains(t, skips[3].Reason, "fields")
}

func TestEurocajaRural_BalanceDefaultsToZero(t *testing.T) {
	raw := `Fecha de ejecución;Fecha valor;Descripción;Importe;Saldo
15/01/2024;15/01/2024;SIN SALDO;-1,00 €;???
`
	drafts, _ := ParseStatement(NewEurocajaRural(), raw)
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].Balance.IsZero())
}

func TestParseStatement_Deduplicates(t *testing.T) {
	raw := `Fecha de ejecución;Fecha valor;Descripción;Importe;Saldo
15/01/2024;15/01/2024;SPOTIFY;-9,99 €;100,00 €
15/01/2024;15/01/2024;SPOTIFY;-9,99 €;100,00 €
15/01/2024;15/01/2024;SPOTIFY;-9,99 €;90,01 €
`
	drafts, skips := ParseStatement(NewEurocajaRural(), raw)

	// Same (date, description, amount) triple: only the first survives,
	// regardless of differing balances.
	require.Len(t, drafts, 1)
	assert.Equal(t, "100", drafts[0].Balance.String())
	require.Len(t, skips, 2)
	assert.Contains(t, skips[0].Reason, "duplicate")

	// Parsing twice yields the same deduplicated set.
	again, _ := ParseStatement(NewEurocajaRural(), raw)
	assert.Equal(t, drafts, again)
}

func TestParseStatement_PreservesFileOrder(t *testing.T) {
	raw := `Fecha de ejecución;Fecha valor;Descripción;Importe;Saldo
20/01/2024;20/01/2024;TERCERO;-3,00 €;0,00 €
05/01/2024;05/01/2024;PRIMERO;-1,00 €;0,00 €
10/01/2024;10/01/2024;SEGUNDO;-2,00 €;0,00 €
`
	drafts, _ := ParseStatement(NewEurocajaRural(), raw)
	require.Len(t, drafts, 3)
	assert.Equal(t, "TERCERO", drafts[0].Description)
	assert.Equal(t, "PRIMERO", drafts[1].Description)
	assert.Equal(t, "SEGUNDO", drafts[2].Description)
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  COMPRA   EN  TIENDA  ", "COMPRA EN TIENDA"},
		{"PAGO TJ****4321", "PAGO TJ****"},
		{"PAGO TJ********987654", "PAGO TJ****"},
		{"RECIBO AGUA 01/02/24", "RECIBO AGUA"},
		{"RECIBO AGUA 01/02/2024", "RECIBO AGUA"},
		{"BIZUM DE JUAN", "BIZUM DE JUAN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanDescription(tt.input), "input %q", tt.input)
	}
}
