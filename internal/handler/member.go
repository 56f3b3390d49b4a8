package handler

import (
	"log/slog"
	"net/http"

	"familytree/internal/domain/models"
	"familytree/internal/domain/services"
	"familytree/internal/httputil"
)

// MemberHandler handles family member HTTP requests
type MemberHandler struct {
	memberService services.MemberService
	logger        *slog.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService services.MemberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		logger:        logger,
	}
}

// ListMembers returns every member ordered by creation time
// GET /api/members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.ListMembers(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

// CreateMember adds a member
// POST /api/members
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMemberRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	member, err := h.memberService.CreateMember(r.Context(), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{"member": member})
}

// updateMemberBody distinguishes an absent image_url from an explicit null,
// which resets the member to the default image
type updateMemberBody struct {
	Name      httputil.OptionalString `json:"name"`
	ImageURL  httputil.OptionalString `json:"image_url"`
	ImageKind httputil.OptionalString `json:"image_kind"`
}

func (b *updateMemberBody) request() *models.UpdateMemberRequest {
	req := &models.UpdateMemberRequest{
		Name:     b.Name.Update(),
		ImageURL: b.ImageURL.Reset(),
	}
	if kind := b.ImageKind.Update(); kind != nil {
		k := models.ImageKind(*kind)
		req.ImageKind = &k
	}
	return req
}

// UpdateMember changes name and/or image
// PATCH /api/members/{id}
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body updateMemberBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		badRequest(w, err)
		return
	}

	member, err := h.memberService.UpdateMember(r.Context(), id, body.request())
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"member": member})
}

// DeleteMember removes a member without children
// DELETE /api/members/{id}
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.memberService.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
