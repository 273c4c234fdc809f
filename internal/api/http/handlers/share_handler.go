package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-share/internal/api/dto"
	"github.com/spec-kit/survey-share/internal/auth"
	"github.com/spec-kit/survey-share/internal/domain"
	"github.com/spec-kit/survey-share/internal/service"
	apperrors "github.com/spec-kit/survey-share/pkg/util"
)

// ShareHandler exposes survey sharing and share token endpoints.
type ShareHandler struct {
	shares *service.ShareService
}

// NewShareHandler constructs handler.
func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shareService}
}

// Share handles POST /share/:surveyId.
func (h *ShareHandler) Share(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ShareRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	recipients := make([]domain.Recipient, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		recipients = append(recipients, domain.Recipient{Email: r.Email, Mobile: r.MobileNo})
	}
	shareReq, err := service.ParseShareRequest(req.ShareType, recipients)
	if err != nil {
		return shareError(err)
	}

	result, err := h.shares.Issue(c.UserContext(), &principal.Issuer, c.Params("surveyId"), shareReq)
	if err != nil {
		return shareError(err)
	}

	if result.Type == domain.ShareTypePublic {
		return c.JSON(dto.PublicShareResponse{Type: string(domain.ShareTypePublic), Link: result.PublicLink})
	}
	return c.Status(http.StatusCreated).JSON(dto.PersonalizedShareResponse{
		Type:    string(domain.ShareTypePersonalized),
		Message: "Survey shared successfully",
		Links:   personalizedLinks(result.Links),
	})
}

// Validate handles POST /share/:surveyId/validate.
func (h *ShareHandler) Validate(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Token) == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	token, err := h.shares.Validate(c.UserContext(), c.Params("surveyId"), req.Token)
	if err != nil {
		return shareError(err)
	}
	return c.JSON(dto.ValidateTokenResponse{
		Valid:          true,
		SurveyID:       token.SurveyID,
		RecipientEmail: token.RecipientEmail,
	})
}

// MarkUsed handles POST /share/mark-used.
func (h *ShareHandler) MarkUsed(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Token) == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	if _, err := h.shares.Consume(c.UserContext(), strings.TrimSpace(req.SurveyID), req.Token); err != nil {
		return shareError(err)
	}
	return c.JSON(dto.MessageResponse{Message: "Token marked as used"})
}

// SurveyByToken handles GET /share/survey?token=.
func (h *ShareHandler) SurveyByToken(c *fiber.Ctx) error {
	secret := c.Query("token")
	if strings.TrimSpace(secret) == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	survey, token, err := h.shares.SurveyForToken(c.UserContext(), secret)
	if err != nil {
		return shareError(err)
	}
	return c.JSON(dto.SurveyByTokenResponse{
		Survey:    surveyResponse(survey),
		Recipient: token.RecipientEmail,
	})
}

func personalizedLinks(links []service.PersonalizedLink) []dto.PersonalizedLinkResponse {
	out := make([]dto.PersonalizedLinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, dto.PersonalizedLinkResponse{
			Email:     l.Email,
			MobileNo:  l.Mobile,
			Link:      l.URL,
			ExpiresAt: l.ExpiresAt,
		})
	}
	return out
}

func surveyResponse(survey *domain.Survey) dto.SurveyResponse {
	questions := make([]dto.QuestionResponse, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		questions = append(questions, dto.QuestionResponse{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			Media:        q.Media,
		})
	}
	return dto.SurveyResponse{
		ID:          survey.ID,
		Title:       survey.Title,
		Description: survey.Description,
		FlowType:    survey.FlowType,
		Settings:    survey.Settings,
		Questions:   questions,
		CreatedAt:   survey.CreatedAt,
	}
}
