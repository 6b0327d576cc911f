package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/angelmondragon/rocketshoes/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Seed is a json-server style document: {"products": [...], "stock": [...]}.
type Seed struct {
	Products []Product `json:"products" validate:"dive"`
	Stock    []Stock   `json:"stock" validate:"dive"`
}

// LoadSeed decodes and validates a seed document. Every stock entry must reference
// a listed product and ids must be unique.
func LoadSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode seed")
	}
	if err := validate.Struct(&seed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seed").
			WithDetails(fieldErrors(err))
	}

	products := make(map[int64]struct{}, len(seed.Products))
	for _, p := range seed.Products {
		if p.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %d has a negative price", p.ID))
		}
		if _, dup := products[p.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product %d", p.ID))
		}
		products[p.ID] = struct{}{}
	}
	stocked := make(map[int64]struct{}, len(seed.Stock))
	for _, st := range seed.Stock {
		if _, ok := products[st.ID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("stock references unknown product %d", st.ID))
		}
		if _, dup := stocked[st.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate stock for product %d", st.ID))
		}
		stocked[st.ID] = struct{}{}
	}
	return &seed, nil
}

// LoadSeedFile opens path and runs LoadSeed on it.
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		out[fe.Namespace()] = fe.Tag()
	}
	return out
}
