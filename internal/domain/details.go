package domain

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrShapeMismatch means details.image_url does not match the structure tag.
var ErrShapeMismatch = errors.New("product details do not match structure")

type DetailsCommon struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Discount      string  `json:"discount,omitempty"`
	Disclaimer    string  `json:"Disclaimer,omitempty"`
	Description   string  `json:"description"`
	StockQuantity int     `json:"stock_quantity"`
}

type ColorImage struct {
	URL   string `json:"url"`
	Color string `json:"color"`
}

// ProductDetails is either GenericDetails or ClothingDetails. Callers switch
// on the concrete type or on Structure(); nothing inspects raw JSON.
type ProductDetails interface {
	Structure() Structure
	Common() DetailsCommon
	ImageURLs() []string
	ImageValues() any
}

type GenericDetails struct {
	DetailsCommon
	ImageURL []string `json:"image_url"`
}

func (GenericDetails) Structure() Structure    { return StructureGeneric }
func (d GenericDetails) Common() DetailsCommon { return d.DetailsCommon }
func (d GenericDetails) ImageValues() any      { return nonNil(d.ImageURL) }
func (d GenericDetails) ImageURLs() []string {
	out := make([]string, 0, len(d.ImageURL))
	for _, u := range d.ImageURL {
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

type ClothingDetails struct {
	DetailsCommon
	ImageURL []ColorImage `json:"image_url"`
}

func (ClothingDetails) Structure() Structure    { return StructureClothing }
func (d ClothingDetails) Common() DetailsCommon { return d.DetailsCommon }
func (d ClothingDetails) ImageValues() any      { return nonNil(d.ImageURL) }
func (d ClothingDetails) ImageURLs() []string {
	out := make([]string, 0, len(d.ImageURL))
	for _, im := range d.ImageURL {
		if im.URL != "" {
			out = append(out, im.URL)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func isEmptyJSON(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// DecodeDetails decodes a details blob according to its structure tag.
func DecodeDetails(s Structure, raw []byte) (ProductDetails, error) {
	switch s {
	case StructureGeneric:
		var d GenericDetails
		if isEmptyJSON(raw) {
			return d, nil
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, shapeErr(s, err)
		}
		return d, nil
	case StructureClothing:
		var d ClothingDetails
		if isEmptyJSON(raw) {
			return d, nil
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, shapeErr(s, err)
		}
		return d, nil
	default:
		return nil, errors.Errorf("unknown product structure %q", s)
	}
}

func shapeErr(s Structure, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return errors.Wrapf(ErrShapeMismatch, "%s: %v", s, err)
	}
	return errors.Wrap(err, "decode details")
}

// DetailsEdit holds the fields exposed by the edit form.
type DetailsEdit struct {
	Name          string
	Price         float64
	Description   string
	StockQuantity int
}

// MergeDetails overwrites the editable keys of a stored details blob and keeps
// every other key as it was.
func MergeDetails(raw []byte, e DetailsEdit) ([]byte, error) {
	m := map[string]json.RawMessage{}
	if !isEmptyJSON(raw) {
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, errors.Wrap(err, "decode details")
		}
	}
	set := func(k string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		m[k] = b
		return nil
	}
	for k, v := range map[string]any{
		"name":           e.Name,
		"price":          e.Price,
		"description":    e.Description,
		"stock_quantity": e.StockQuantity,
	} {
		if err := set(k, v); err != nil {
			return nil, errors.Wrap(err, "encode details")
		}
	}
	return json.Marshal(m)
}

// NormalizeImages flattens either image shape into URLs, falling back to the
// placeholder when there are none.
func NormalizeImages(d ProductDetails) []string {
	if d == nil {
		return []string{PlaceholderImage}
	}
	urls := d.ImageURLs()
	if len(urls) == 0 {
		return []string{PlaceholderImage}
	}
	return urls
}
