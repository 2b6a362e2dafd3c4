package inventory

import (
	"strings"

	"xiuh/internal/domain/catalog"
)

// Kind identifica el compartimento. Cada (usuario, kind) es un solo documento
// item -> cantidad, así los movimientos son transacciones sobre dos documentos.
type Kind string

const (
	Bag     Kind = "bag"
	Storage Kind = "storage"
)

const (
	// MaxBagCapacity cuenta tipos distintos de item, no cantidad total.
	MaxBagCapacity  = 50
	StoragePageSize = 20
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Bag:
		return Bag, nil
	case Storage:
		return Storage, nil
	default:
		return "", ErrInvalidInput
	}
}

// Limit es la capacidad en tipos distintos. 0 = sin límite.
func (k Kind) Limit() int {
	if k == Bag {
		return MaxBagCapacity
	}
	return 0
}

func (k Kind) Valid() bool { return k == Bag || k == Storage }

// Entry es un item del compartimento hidratado con el catálogo.
// Known=false si el id no está en el catálogo (dato legado).
type Entry struct {
	ItemID   string
	Quantity int
	Item     catalog.ItemDef
	Known    bool
}

type Page struct {
	Items       []Entry
	TotalPages  int
	CurrentPage int
	HasMore     bool
}
