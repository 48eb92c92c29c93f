package importer

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PriceList is the parsed form of a supplier price-list document. It is built
// once by ParsePriceList and never mutated afterwards.
type PriceList struct {
	Shop       string
	Categories []PriceListCategory
	Goods      []PriceListGood
}

// PriceListCategory is a category declaration from the document header.
type PriceListCategory struct {
	ID   uint
	Name string
}

// PriceListGood is one offered good.
type PriceListGood struct {
	ExternalID uint
	CategoryID uint
	Name       string
	Model      string
	Price      int
	PriceRRC   int
	Quantity   int
	Parameters map[string]string
}

// Raw decode targets. Pointer fields distinguish an absent key from a zero
// value so required keys can be reported precisely. The categories and goods
// sections must be present even when empty.
type rawPriceList struct {
	Shop       *string        `yaml:"shop"`
	Categories *[]rawCategory `yaml:"categories"`
	Goods      *[]rawGood     `yaml:"goods"`
}

type rawCategory struct {
	ID   *uint   `yaml:"id"`
	Name *string `yaml:"name"`
}

type rawGood struct {
	ID         *uint                  `yaml:"id"`
	Category   *uint                  `yaml:"category"`
	Name       *string                `yaml:"name"`
	Model      *string                `yaml:"model"`
	Price      *int                   `yaml:"price"`
	PriceRRC   *int                   `yaml:"price_rrc"`
	Quantity   *int                   `yaml:"quantity"`
	Parameters map[string]interface{} `yaml:"parameters"`
}

// ParsePriceList decodes and validates a YAML price list. On any defect it
// returns a *MalformedDocumentError and no PriceList.
func ParsePriceList(data []byte) (*PriceList, error) {
	var raw rawPriceList
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedDocumentError{Reason: "invalid yaml", Err: err}
	}

	if raw.Shop == nil || *raw.Shop == "" {
		return nil, &MalformedDocumentError{Reason: "missing shop name"}
	}
	if raw.Categories == nil {
		return nil, &MalformedDocumentError{Reason: "missing categories section"}
	}
	if raw.Goods == nil {
		return nil, &MalformedDocumentError{Reason: "missing goods section"}
	}

	doc := &PriceList{Shop: *raw.Shop}

	for i, rc := range *raw.Categories {
		if rc.ID == nil {
			return nil, &MalformedDocumentError{Reason: fmt.Sprintf("category %d: missing id", i)}
		}
		if rc.Name == nil || *rc.Name == "" {
			return nil, &MalformedDocumentError{Reason: fmt.Sprintf("category %d: missing name", i)}
		}
		doc.Categories = append(doc.Categories, PriceListCategory{ID: *rc.ID, Name: *rc.Name})
	}

	for i, rg := range *raw.Goods {
		good, err := buildGood(i, rg)
		if err != nil {
			return nil, err
		}
		doc.Goods = append(doc.Goods, *good)
	}

	return doc, nil
}

func buildGood(index int, rg rawGood) (*PriceListGood, error) {
	missing := func(key string) error {
		return &MalformedDocumentError{Reason: fmt.Sprintf("good %d: missing %s", index, key)}
	}

	switch {
	case rg.ID == nil:
		return nil, missing("id")
	case rg.Category == nil:
		return nil, missing("category")
	case rg.Name == nil || *rg.Name == "":
		return nil, missing("name")
	case rg.Model == nil:
		return nil, missing("model")
	case rg.Price == nil:
		return nil, missing("price")
	case rg.PriceRRC == nil:
		return nil, missing("price_rrc")
	case rg.Quantity == nil:
		return nil, missing("quantity")
	}

	good := &PriceListGood{
		ExternalID: *rg.ID,
		CategoryID: *rg.Category,
		Name:       *rg.Name,
		Model:      *rg.Model,
		Price:      *rg.Price,
		PriceRRC:   *rg.PriceRRC,
		Quantity:   *rg.Quantity,
		Parameters: make(map[string]string, len(rg.Parameters)),
	}

	// Parameter values may be strings, numbers or booleans in the source
	// document; all are stored as strings.
	for k, v := range rg.Parameters {
		if k == "" {
			return nil, &MalformedDocumentError{Reason: fmt.Sprintf("good %d: empty parameter name", index)}
		}
		good.Parameters[k] = fmt.Sprintf("%v", v)
	}

	return good, nil
}
