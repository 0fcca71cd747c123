package contacts

import (
	"net/http"

	"propertyvoice_backend/platform/httpkit"
	"propertyvoice_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler serves the live-call contact validation tool.
type Handler struct {
	resolver *Resolver
	val      *validator.Validator
}

func NewHandler(resolver *Resolver, val *validator.Validator) *Handler {
	return &Handler{resolver: resolver, val: val}
}

type validateContactRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type validateContactResponse struct {
	Known      bool   `json:"known"`
	IsTenant   bool   `json:"isTenant"`
	Name       string `json:"name,omitempty"`
	UnitNumber string `json:"unitNumber,omitempty"`
	CallCount  int    `json:"callCount"`
	Response   string `json:"response"`
}

// HandleValidateContact is called by the voice platform mid-call to check
// whether the caller is a known tenant. The "response" field is spoken text.
func (h *Handler) HandleValidateContact(c *gin.Context) {
	var req validateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	res := h.resolver.Resolve(c.Request.Context(), req.Phone)

	resp := validateContactResponse{
		Known:     res.Known,
		IsTenant:  res.Contact.IsTenant(),
		CallCount: res.Contact.CallCount,
	}
	if res.Contact.Name != nil {
		resp.Name = *res.Contact.Name
	}
	if res.Contact.UnitNumber != nil {
		resp.UnitNumber = *res.Contact.UnitNumber
	}

	switch {
	case res.Known && res.Contact.IsTenant() && resp.Name != "":
		resp.Response = "I found your account, " + resp.Name + ". How can I help you today?"
	case res.Known:
		resp.Response = "Welcome back! How can I help you today?"
	default:
		resp.Response = "I don't have that number on file yet. Could I get your name so I can help you?"
	}

	httpkit.OK(c, resp)
}
