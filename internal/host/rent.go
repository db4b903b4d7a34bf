package host

// Mainnet storage pricing. Every account carries a fixed metadata overhead
// on top of its data length.
const (
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	rentExemptionYears     = 2
)

// Rent prices account storage. An account funded to MinimumBalance lives
// forever; the host never creates anything below that line.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionYears      uint64
}

// DefaultRent returns the mainnet parameters.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: lamportsPerByteYear,
		ExemptionYears:      rentExemptionYears,
	}
}

// MinimumBalance returns the deposit required for an account of the given
// data size.
func (r Rent) MinimumBalance(size uint64) uint64 {
	return (size + accountStorageOverhead) * r.LamportsPerByteYear * r.ExemptionYears
}
