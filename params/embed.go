package params

import (
	"embed"

	"github.com/haslersn/multipars/internal/xerrors"
	"github.com/haslersn/multipars/poly"
	"github.com/haslersn/multipars/residue"
)

//go:embed data/*.json
var dataFS embed.FS

// Built holds the materialized residue fields, Fourier context, and
// Factors/TIP contexts for one parameter Set, as produced by Build, the
// single place new code turns a Set into ready-to-use rings, per spec.md §6.
type Built struct {
	Set Set

	CiphertextField   *residue.PrimeField
	CiphertextFourier *poly.FourierContext

	PlaintextField  *residue.NativeField
	PlaintextFactors *poly.FactorsContext
	PlaintextTIP     *poly.TIPContext

	DealerField   *residue.PrimeField
	DealerFourier *poly.FourierContext
}

// Build constructs every ring and conversion context named by s.
func Build(s Set) (*Built, error) {
	ctField := residue.NewPrimeField(s.CiphertextQ)
	psi := residue.FromUint(ctField, s.CiphertextPsi)
	ctFourier := poly.NewFourierContext(ctField, s.CiphertextM, psi, s.CiphertextGen)

	ptField := residue.NewNativeField(s.PlaintextBits)
	factors, err := poly.LoadFactorsContext(dataFS, s.FactorFile, ptField, s.FactorCount, s.FactorDegree)
	if err != nil {
		return nil, xerrors.NewConfigError("building factors context for "+s.Name, err)
	}
	tip := poly.NewTIPContext(factors, s.Delta)

	dealerField := residue.NewPrimeField(s.DealerQ)
	dealerPsi := residue.FromUint(dealerField, s.DealerPsi)
	dealerFourier := poly.NewFourierContext(dealerField, s.DealerM, dealerPsi, s.DealerGen)

	return &Built{
		Set:               s,
		CiphertextField:   ctField,
		CiphertextFourier: ctFourier,
		PlaintextField:    ptField,
		PlaintextFactors:  factors,
		PlaintextTIP:      tip,
		DealerField:       dealerField,
		DealerFourier:     dealerFourier,
	}, nil
}
