package counts

import "strings"

const (
	SectorPerishables = "Perecíveis"
	SectorGrocery     = "Mercearia"

	perishablePrefix = "H3C"
)

// IsPerishable reports whether a location address belongs to the cold area.
func IsPerishable(endereco string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(endereco)), perishablePrefix)
}

func SectorOf(endereco string) string {
	if IsPerishable(endereco) {
		return SectorPerishables
	}
	return SectorGrocery
}
