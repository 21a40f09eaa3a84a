package catalog

// Catalog is a catalog owned by the API key. Only ID is relied upon.
type Catalog struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// Status is the status block carried by every service response.
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

// StatusSuccess is the status code of a successful call.
const StatusSuccess = 0

type statusResponse struct {
	Response struct {
		Status Status `json:"status"`
	} `json:"response"`
}

type listResponse struct {
	Response struct {
		Status   Status    `json:"status"`
		Catalogs []Catalog `json:"catalogs"`
		Start    int       `json:"start"`
		Total    int       `json:"total"`
	} `json:"response"`
}
