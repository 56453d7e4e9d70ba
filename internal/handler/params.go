package handler

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Each endpoint binds only the query parameters it declares, with the same
// form/explode rules generated OpenAPI servers use. Parameters an endpoint
// does not declare are ignored, never validated.

// bindVolunteer binds ?volunteer=: a namespaced volunteer id, "none", or
// empty when absent.
func bindVolunteer(r *http.Request) (string, error) {
	return bindOptionalString(r, "volunteer")
}

// bindView binds ?view=, the widget view name of GET /calendar.
func bindView(r *http.Request) (string, error) {
	return bindOptionalString(r, "view")
}

// bindDate binds ?date=, which narrows GET /days to one festival day.
// Returns nil when absent.
func bindDate(r *http.Request) (*openapi_types.Date, error) {
	var d *openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, false, "date", r.URL.Query(), &d); err != nil {
		return nil, err
	}
	return d, nil
}

func bindOptionalString(r *http.Request, name string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}
