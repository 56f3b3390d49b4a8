package handler

import "net/http"

// Routes groups the handlers served by the API
type Routes struct {
	Members  *MemberHandler
	Tree     *TreeHandler
	Settings *SettingsHandler
	Media    *MediaHandler
	Auth     *AuthHandler

	// Protect wraps write endpoints, e.g. middleware.RequireAuth
	Protect func(http.Handler) http.Handler

	// Uploads serves stored files from UploadPrefix when media is on local disk
	Uploads      http.Handler
	UploadPrefix string
}

// Register adds every route to mux (Go 1.22+ method patterns)
func (rt *Routes) Register(mux *http.ServeMux) {
	protect := rt.Protect
	if protect == nil {
		protect = func(h http.Handler) http.Handler { return h }
	}
	write := func(fn http.HandlerFunc) http.Handler { return protect(fn) }

	// Health check
	mux.HandleFunc("GET /health", HealthCheck)

	// Member routes
	mux.HandleFunc("GET /api/members", rt.Members.ListMembers)
	mux.Handle("POST /api/members", write(rt.Members.CreateMember))
	mux.Handle("PATCH /api/members/{id}", write(rt.Members.UpdateMember))
	mux.Handle("DELETE /api/members/{id}", write(rt.Members.DeleteMember))

	// Tree endpoint
	mux.HandleFunc("GET /api/tree", rt.Tree.GetTree)

	// Settings routes
	mux.HandleFunc("GET /api/settings", rt.Settings.GetSettings)
	mux.Handle("PUT /api/settings", write(rt.Settings.PutSetting))

	// Media routes
	mux.Handle("POST /api/upload", write(rt.Media.Upload))
	mux.HandleFunc("GET /api/files", rt.Media.ListFiles)
	mux.Handle("DELETE /api/files/{name}", write(rt.Media.DeleteFile))
	mux.Handle("POST /api/files/delete-bulk", write(rt.Media.DeleteFiles))

	// Auth routes
	mux.HandleFunc("POST /api/auth/signup", rt.Auth.Signup)
	mux.HandleFunc("POST /api/auth/signin", rt.Auth.Signin)
	mux.HandleFunc("POST /api/auth/request-reset", rt.Auth.RequestReset)
	mux.HandleFunc("POST /api/auth/reset", rt.Auth.ResetPassword)
	mux.Handle("PATCH /api/auth/username", write(rt.Auth.UpdateUsername))

	if rt.Uploads != nil && rt.UploadPrefix != "" {
		mux.Handle("GET "+rt.UploadPrefix+"/", rt.Uploads)
	}
}
