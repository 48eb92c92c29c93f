package importer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePriceList = `
shop: Acme Wholesale
categories:
  - id: 224
    name: Smartphones
  - id: 15
    name: Accessories
goods:
  - id: 4216292
    category: 224
    name: Smartphone X 256GB
    model: x-256/black
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Screen size": 6.5
      "Color": black
      "Waterproof": true
  - id: 4216313
    category: 15
    name: Charging cable
    model: usb-c/1m
    price: 600
    price_rrc: 990
    quantity: 120
    parameters: {}
`

func TestParsePriceList(t *testing.T) {
	doc, err := ParsePriceList([]byte(samplePriceList))
	require.NoError(t, err)

	assert.Equal(t, "Acme Wholesale", doc.Shop)
	require.Len(t, doc.Categories, 2)
	assert.Equal(t, uint(224), doc.Categories[0].ID)
	assert.Equal(t, "Smartphones", doc.Categories[0].Name)

	require.Len(t, doc.Goods, 2)
	phone := doc.Goods[0]
	assert.Equal(t, uint(4216292), phone.ExternalID)
	assert.Equal(t, uint(224), phone.CategoryID)
	assert.Equal(t, "Smartphone X 256GB", phone.Name)
	assert.Equal(t, "x-256/black", phone.Model)
	assert.Equal(t, 110000, phone.Price)
	assert.Equal(t, 116990, phone.PriceRRC)
	assert.Equal(t, 14, phone.Quantity)
}

func TestParsePriceList_ParameterValuesStringified(t *testing.T) {
	doc, err := ParsePriceList([]byte(samplePriceList))
	require.NoError(t, err)

	params := doc.Goods[0].Parameters
	assert.Equal(t, "6.5", params["Screen size"])
	assert.Equal(t, "black", params["Color"])
	assert.Equal(t, "true", params["Waterproof"])
}

func TestParsePriceList_InvalidYAML(t *testing.T) {
	_, err := ParsePriceList([]byte("shop: [unclosed"))

	var malformed *MalformedDocumentError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Error(), "invalid yaml")
	assert.Error(t, errors.Unwrap(malformed))
}

func TestParsePriceList_MissingShop(t *testing.T) {
	_, err := ParsePriceList([]byte("categories:\n  - id: 1\n    name: Tools\ngoods: []\n"))

	var malformed *MalformedDocumentError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Error(), "missing shop name")
}

func TestParsePriceList_MissingTopLevelSections(t *testing.T) {
	// a bare shop name is not a price list
	_, err := ParsePriceList([]byte("shop: Acme\n"))
	var malformed *MalformedDocumentError
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Error(), "missing categories section")

	_, err = ParsePriceList([]byte("shop: Acme\ncategories: []\n"))
	require.True(t, errors.As(err, &malformed))
	assert.Contains(t, malformed.Error(), "missing goods section")
}

func TestParsePriceList_EmptySectionsArePresent(t *testing.T) {
	doc, err := ParsePriceList([]byte("shop: Acme\ncategories: []\ngoods: []\n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Categories)
	assert.Empty(t, doc.Goods)
}

func TestParsePriceList_MissingRequiredGoodKeys(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing price",
			yaml: `
shop: Acme
categories:
  - id: 1
    name: Tools
goods:
  - id: 10
    category: 1
    name: Hammer
    model: h-1
    price_rrc: 500
    quantity: 3
`,
			want: "missing price",
		},
		{
			name: "missing category",
			yaml: `
shop: Acme
categories:
  - id: 1
    name: Tools
goods:
  - id: 10
    name: Hammer
    model: h-1
    price: 400
    price_rrc: 500
    quantity: 3
`,
			want: "missing category",
		},
		{
			name: "missing quantity",
			yaml: `
shop: Acme
categories:
  - id: 1
    name: Tools
goods:
  - id: 10
    category: 1
    name: Hammer
    model: h-1
    price: 400
    price_rrc: 500
`,
			want: "missing quantity",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePriceList([]byte(tc.yaml))

			var malformed *MalformedDocumentError
			require.True(t, errors.As(err, &malformed))
			assert.Contains(t, malformed.Error(), tc.want)
		})
	}
}

func TestParsePriceList_ZeroValuesAreValid(t *testing.T) {
	// quantity: 0 and price: 0 are present keys, not missing ones
	doc, err := ParsePriceList([]byte(`
shop: Acme
categories:
  - id: 1
    name: Tools
goods:
  - id: 10
    category: 1
    name: Hammer
    model: ""
    price: 0
    price_rrc: 0
    quantity: 0
`))
	require.NoError(t, err)
	require.Len(t, doc.Goods, 1)
	assert.Equal(t, 0, doc.Goods[0].Quantity)
	assert.Equal(t, 0, doc.Goods[0].Price)
	assert.Equal(t, "", doc.Goods[0].Model)
}

func TestParsePriceList_EmptyDocument(t *testing.T) {
	_, err := ParsePriceList([]byte(""))

	var malformed *MalformedDocumentError
	require.True(t, errors.As(err, &malformed))
}
