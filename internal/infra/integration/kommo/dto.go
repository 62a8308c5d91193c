package kommo

type customFieldValue struct {
	Value    string `json:"value"`
	EnumCode string `json:"enum_code,omitempty"`
}

type customField struct {
	FieldCode string             `json:"field_code"`
	Values    []customFieldValue `json:"values"`
}

type contactRequest struct {
	Name               string        `json:"name"`
	CustomFieldsValues []customField `json:"custom_fields_values,omitempty"`
}

type tag struct {
	Name string `json:"name"`
}

type ref struct {
	ID int `json:"id"`
}

type leadEmbedded struct {
	Tags     []tag `json:"tags,omitempty"`
	Contacts []ref `json:"contacts"`
}

type leadRequest struct {
	Name     string       `json:"name"`
	Price    int          `json:"price,omitempty"`
	Embedded leadEmbedded `json:"_embedded"`
}

type ContactResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type embeddedResponse struct {
	Embedded struct {
		Leads    []ref             `json:"leads"`
		Contacts []ContactResponse `json:"contacts"`
	} `json:"_embedded"`
}
