package handler

import (
	"net/http"
	"strconv"

	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/csrf"
	"github.com/distria/distria/internal/domain"
)

// PageData carries the fields every authenticated page template needs.
// Page handlers embed it in their own data structs.
type PageData struct {
	CurrentPath string
	User        *domain.User
	CSRFToken   string
	Flash       *Flash
}

// newPageData builds the common template data for an authenticated page.
// The user comes from the request context, set there by the route guard.
func newPageData(w http.ResponseWriter, r *http.Request, isSecure bool) PageData {
	return PageData{
		CurrentPath: r.URL.Path,
		User:        auth.GetUser(r.Context()),
		CSRFToken:   csrf.EnsureToken(w, r, isSecure),
		Flash:       flashFromQuery(r),
	}
}

// flashFromQuery translates the outcome query params used by the
// POST-redirect-GET handlers into a flash message.
func flashFromQuery(r *http.Request) *Flash {
	q := r.URL.Query()
	switch {
	case q.Get("created") == "1":
		return &Flash{Type: "success", Message: "Registro creado correctamente."}
	case q.Get("updated") == "1":
		return &Flash{Type: "success", Message: "Cambios guardados."}
	case q.Get("deactivated") == "1":
		return &Flash{Type: "success", Message: "Registro desactivado."}
	case q.Get("activated") == "1":
		return &Flash{Type: "success", Message: "Registro activado."}
	case q.Get("canceled") == "1":
		return &Flash{Type: "success", Message: "Pedido cancelado."}
	case q.Get("archived") == "1":
		return &Flash{Type: "success", Message: "Pedido archivado."}
	case q.Get("deleted") == "1":
		return &Flash{Type: "success", Message: "Registro eliminado."}
	case q.Get("error") != "":
		return &Flash{Type: "error", Message: q.Get("error")}
	}
	return nil
}

// parsePageRequest reads the page/size query params of a list view.
func parsePageRequest(r *http.Request) domain.PageRequest {
	pr := domain.PageRequest{Size: domain.DefaultPageSize}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		pr.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		pr.Size = v
	}
	return pr.Normalize()
}
