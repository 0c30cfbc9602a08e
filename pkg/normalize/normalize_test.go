package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Activos-api/pkg/normalize"
)

func TestSearch(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Pérez", "perez"},
		{"  GARCÍA  ", "garcia"},
		{"tóner dañado", "toner danado"},
		{"ACTA-ENTREGA", "acta-entrega"},
		{"ñoño", "nono"},
		{"", ""},
		{"   ", ""},
		{"sin-acentos", "sin-acentos"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalize.Search(tc.in), "entrada %q", tc.in)
	}
}

// Los alfabetos para translate() en SQL deben plegar exactamente igual que
// Search; si divergen, término y columna dejan de coincidir en la búsqueda.
func TestSearchCoincideConAlfabetosSQL(t *testing.T) {
	assert.Equal(t, normalize.Folded, normalize.Search(normalize.Accented))
	assert.Equal(t, len([]rune(normalize.Accented)), len([]rune(normalize.Folded)))
}
