package requests

// ExtractAddressRequest is the body for single-address extraction.
type ExtractAddressRequest struct {
	Address string         `json:"address" binding:"required"`
	Options ExtractOptions `json:"options,omitempty"`
}

// ExtractOptions tunes one extraction call.
type ExtractOptions struct {
	UseCache        bool    `json:"use_cache,omitempty"`
	IncludeMetadata bool    `json:"include_metadata,omitempty"`
	MinConfidence   float64 `json:"min_confidence,omitempty"`
}

// DefaultExtractOptions are applied when the request carries no options.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{UseCache: true, IncludeMetadata: true}
}

// BatchExtractRequest is the body for batch extraction. The batch is
// processed asynchronously; results are fetched by job ID.
type BatchExtractRequest struct {
	Addresses []string       `json:"addresses" binding:"required,min=1,max=20000"`
	Options   ExtractOptions `json:"options,omitempty"`
}

// ValidateLocationRequest checks a set of components for geographic
// consistency without running extraction.
type ValidateLocationRequest struct {
	Area       string `json:"area,omitempty"`
	District   string `json:"district,omitempty"`
	Division   string `json:"division,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// SearchPlacesRequest queries the place search index.
type SearchPlacesRequest struct {
	Query    string `json:"query" form:"q" binding:"required"`
	District string `json:"district,omitempty" form:"district"`
	Type     string `json:"type,omitempty" form:"type"`
	Limit    int    `json:"limit,omitempty" form:"limit"`
}
