package models

// ImportSummary reports what a price-list reconciliation touched.
type ImportSummary struct {
	Shop            string `json:"shop"`
	Categories      int    `json:"categories"`
	Products        int    `json:"products"`
	ListingsCreated int    `json:"listingsCreated"`
	ListingsUpdated int    `json:"listingsUpdated"`
	ListingsRemoved int64  `json:"listingsRemoved"`
	Attributes      int    `json:"attributes"`
}

// ImportTemplateColumn describes one field of the downloadable price-list template.
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate is the price-list template definition.
type ImportTemplate struct {
	Format  string                 `json:"format"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// PriceListTemplate returns the template definition for supplier price lists.
func PriceListTemplate() ImportTemplate {
	return ImportTemplate{
		Format: "yaml",
		Columns: []ImportTemplateColumn{
			{Name: "id", Description: "Supplier's external id for the listing", Required: true, Type: "int", Example: "4216292"},
			{Name: "category", Description: "Category id, must appear under categories", Required: true, Type: "int", Example: "224"},
			{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Smartphone X 256GB"},
			{Name: "model", Description: "Product model", Required: true, Type: "string", Example: "x-256/black"},
			{Name: "price", Description: "Wholesale price", Required: true, Type: "int", Example: "110000"},
			{Name: "price_rrc", Description: "Recommended retail price", Required: true, Type: "int", Example: "116990"},
			{Name: "quantity", Description: "Units in stock", Required: true, Type: "int", Example: "14"},
			{Name: "parameters", Description: "Key/value product attributes", Required: true, Type: "mapping", Example: "color: black"},
		},
	}
}

// PartnerUpdateRequest asks the service to fetch and reconcile a price list by URL.
type PartnerUpdateRequest struct {
	URL string `json:"url" binding:"required"`
}
