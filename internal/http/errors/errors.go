package errors

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// WriteError escribe {"error": {id, status, title, detail}}.
// El detalle (mensaje de la causa) sólo se expone si exposeDetail
// es true; en prod siempre va en false.
func WriteError(w http.ResponseWriter, err error, exposeDetail bool) {
	appErr := FromError(err)

	body := errorBody{
		ID:     appErr.ID(),
		Status: appErr.Status,
		Title:  appErr.Title,
	}
	if exposeDetail && appErr.Err != nil {
		body.Detail = appErr.Err.Error()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: body})
}
