package api

import (
	"database/sql"
	"net/http"

	"github.com/pebbling/spaarpot/internal/gifting"
	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, svc *gifting.Service, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	giftsHandler := &GiftsHandler{DB: db, Service: svc}
	claimsHandler := &ClaimsHandler{Service: svc, Users: store.UserDirectory{DB: db}}

	authMW := AuthMiddleware(jwtSecret, db)
	optionalAuth := OptionalAuth(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Catalog: public read, admin artwork.
	mux.HandleFunc("GET /api/gifts/categories", giftsHandler.Categories)
	mux.HandleFunc("GET /api/gifts/types", giftsHandler.Types)
	mux.HandleFunc("GET /api/gifts/types/{id}/image", giftsHandler.GetImage)
	mux.Handle("PUT /api/gifts/types/{id}/image", authMW(requireAdmin(http.HandlerFunc(giftsHandler.UploadImage))))

	// The caller's own inventory, credit and history.
	mux.Handle("POST /api/gifts/purchase", authMW(http.HandlerFunc(giftsHandler.Purchase)))
	mux.Handle("GET /api/gifts/purchases", authMW(http.HandlerFunc(giftsHandler.Purchases)))
	mux.Handle("GET /api/gifts/inventory", authMW(http.HandlerFunc(giftsHandler.Inventory)))
	mux.Handle("GET /api/gifts/credits", authMW(http.HandlerFunc(giftsHandler.Credits)))
	mux.Handle("POST /api/gifts/credits/spend", authMW(http.HandlerFunc(giftsHandler.SpendCredit)))
	mux.Handle("GET /api/gifts/sent", authMW(http.HandlerFunc(giftsHandler.Sent)))
	mux.Handle("GET /api/gifts/received", authMW(http.HandlerFunc(giftsHandler.Received)))
	mux.Handle("GET /api/gifts/stats", authMW(http.HandlerFunc(giftsHandler.Stats)))

	// Claims.
	mux.Handle("POST /api/claims", authMW(http.HandlerFunc(claimsHandler.Create)))
	mux.HandleFunc("GET /api/claims/{id}", claimsHandler.Get)
	mux.HandleFunc("GET /api/claims/{id}/status", claimsHandler.Status)
	mux.Handle("DELETE /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Cancel)))
	mux.Handle("POST /api/claims/{id}/resolve", optionalAuth(http.HandlerFunc(claimsHandler.Resolve)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	return mux
}
